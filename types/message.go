// Package types provides core types used across the contextflow module.
// This package has ZERO dependencies on other contextflow packages to avoid circular imports.
// All other packages should import types from here.
package types

import "time"

// Role represents the role of a message participant.
type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message represents one conversational turn or tool record.
// Messages are immutable once created: compaction only copies or drops them.
type Message struct {
	Role       Role      `json:"role"`
	Content    string    `json:"content,omitempty"`
	Name       string    `json:"name,omitempty"`
	ToolCallID string    `json:"tool_call_id,omitempty"`
	Timestamp  time.Time `json:"timestamp,omitempty"`
}

// NewMessage creates a new message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewHumanMessage creates a new human message.
func NewHumanMessage(content string) Message {
	return NewMessage(RoleHuman, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return NewMessage(RoleAssistant, content)
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return NewMessage(RoleSystem, content)
}

// NewToolMessage creates a new tool result message.
func NewToolMessage(toolCallID, name, content string) Message {
	return Message{
		Role:       RoleTool,
		Content:    content,
		Name:       name,
		ToolCallID: toolCallID,
		Timestamp:  time.Now(),
	}
}

// CompressTarget selects which roles feed the summarizer.
type CompressTarget string

const (
	CompressAll       CompressTarget = "all"
	CompressHuman     CompressTarget = "human"
	CompressAssistant CompressTarget = "assistant"
)

// Label returns the human-readable annotation for summary messages,
// e.g. "(human only)". CompressAll has no annotation.
func (t CompressTarget) Label() string {
	switch t {
	case CompressHuman:
		return "(human only)"
	case CompressAssistant:
		return "(assistant only)"
	default:
		return ""
	}
}

// Valid reports whether t is one of the defined targets.
// The empty string is treated as CompressAll by the engine.
func (t CompressTarget) Valid() bool {
	switch t {
	case CompressAll, CompressHuman, CompressAssistant, "":
		return true
	}
	return false
}
