// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector 指标收集器
type Collector struct {
	// 压缩指标
	compactionsTotal *prometheus.CounterVec
	tokensReclaimed  prometheus.Counter
	windowTokens     prometheus.Histogram

	// 降级指标
	summaryDegraded   prometheus.Counter
	tokenizerFallback prometheus.Counter

	logger *zap.Logger
}

// NewCollector 创建指标收集器。reg 为 nil 时使用默认注册表。
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.compactionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compactions_total",
			Help:      "Total number of compaction decisions",
		},
		[]string{"fired"},
	)

	c.tokensReclaimed = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_reclaimed_total",
			Help:      "Estimated tokens removed from windows by compaction",
		},
	)

	c.windowTokens = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "window_tokens",
			Help:      "Estimated token size of committed windows",
			Buckets:   prometheus.ExponentialBuckets(128, 2, 12),
		},
	)

	c.summaryDegraded = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_degraded_total",
			Help:      "Summarizer failures answered with the deterministic fallback",
		},
	)

	c.tokenizerFallback = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokenizer_fallback_total",
			Help:      "Primary tokenizer failures answered with the word-count fallback",
		},
	)

	return c
}

// ObserveCompaction 记录一次压缩决策。所有方法对 nil 接收者安全。
func (c *Collector) ObserveCompaction(fired bool, tokensBefore, tokensAfter int) {
	if c == nil {
		return
	}
	label := "false"
	if fired {
		label = "true"
	}
	c.compactionsTotal.WithLabelValues(label).Inc()
	c.windowTokens.Observe(float64(tokensAfter))
	if fired && tokensBefore > tokensAfter {
		c.tokensReclaimed.Add(float64(tokensBefore - tokensAfter))
	}
}

// ObserveSummaryDegraded 记录一次摘要降级。
func (c *Collector) ObserveSummaryDegraded() {
	if c == nil {
		return
	}
	c.summaryDegraded.Inc()
}

// ObserveTokenizerFallback 记录一次分词器兜底。
func (c *Collector) ObserveTokenizerFallback() {
	if c == nil {
		return
	}
	c.tokenizerFallback.Inc()
}
