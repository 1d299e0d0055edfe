// Package tokenizer 提供统一的 token 计数接口，
// 支持 tiktoken 精确计数与 CJK 估算器，并带有永不失败的
// 空白分词兜底（CountWords），用于上下文压缩的 token 预算判断。
package tokenizer
