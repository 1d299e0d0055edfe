package types

import "strings"

// recordKind discriminates the two Record shapes.
type recordKind uint8

const (
	kindCanonical recordKind = iota
	kindLoose
)

// Record is the sum type over the two message shapes the pipeline produces:
// a canonical Message, or a loosely-typed role/content pair whose role field
// may be absent entirely. Shape is resolved once at the normalization
// boundary; nothing downstream re-inspects it.
type Record struct {
	kind    recordKind
	msg     Message
	role    string
	hasRole bool
	content string
}

// Canonical wraps an already-canonical Message.
func Canonical(msg Message) Record {
	return Record{kind: kindCanonical, msg: msg}
}

// Loose wraps a loosely-typed record whose role field is present
// (possibly empty) alongside its content.
func Loose(role, content string) Record {
	return Record{kind: kindLoose, role: role, hasRole: true, content: content}
}

// LooseContent wraps a loosely-typed record carrying no role field at all.
// Such records normalize to RoleHuman.
func LooseContent(content string) Record {
	return Record{kind: kindLoose, content: content}
}

// Wrap converts canonical messages into Records.
func Wrap(msgs []Message) []Record {
	records := make([]Record, len(msgs))
	for i, m := range msgs {
		records[i] = Canonical(m)
	}
	return records
}

// IsTool reports whether the record is a tool record in either shape.
// Loose records are matched on the literal role value "tool",
// case-insensitively, before any role mapping applies.
func (r Record) IsTool() bool {
	if r.kind == kindCanonical {
		return r.msg.Role == RoleTool
	}
	return r.hasRole && strings.EqualFold(r.role, "tool")
}

// Normalize resolves the record into a canonical Message.
//
// Role mapping for loose records:
//
//	"human", "user"    -> RoleHuman
//	"ai", "assistant"  -> RoleAssistant
//	"tool"             -> RoleTool (case-insensitive, bypasses the mapping)
//	anything else      -> RoleSystem
//	no role field      -> RoleHuman
func (r Record) Normalize() Message {
	if r.kind == kindCanonical {
		return r.msg
	}
	if !r.hasRole {
		return Message{Role: RoleHuman, Content: r.content}
	}
	switch strings.ToLower(r.role) {
	case "human", "user":
		return Message{Role: RoleHuman, Content: r.content}
	case "ai", "assistant":
		return Message{Role: RoleAssistant, Content: r.content}
	case "tool":
		return Message{Role: RoleTool, Content: r.content}
	default:
		return Message{Role: RoleSystem, Content: r.content}
	}
}
