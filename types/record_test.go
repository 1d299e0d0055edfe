package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_RoleMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record Record
		want   Role
	}{
		{"human literal", Loose("human", "x"), RoleHuman},
		{"user alias", Loose("user", "x"), RoleHuman},
		{"user uppercase", Loose("USER", "x"), RoleHuman},
		{"ai alias", Loose("ai", "x"), RoleAssistant},
		{"assistant literal", Loose("assistant", "x"), RoleAssistant},
		{"tool literal", Loose("tool", "x"), RoleTool},
		{"tool mixed case", Loose("Tool", "x"), RoleTool},
		{"unknown role", Loose("function", "x"), RoleSystem},
		{"empty role field", Loose("", "x"), RoleSystem},
		{"no role field", LooseContent("x"), RoleHuman},
		{"canonical passthrough", Canonical(Message{Role: RoleAssistant, Content: "x"}), RoleAssistant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.record.Normalize()
			assert.Equal(t, tt.want, got.Role)
			assert.Equal(t, "x", got.Content)
		})
	}
}

func TestRecord_IsTool(t *testing.T) {
	t.Parallel()

	assert.True(t, Loose("tool", "x").IsTool())
	assert.True(t, Loose("TOOL", "x").IsTool())
	assert.True(t, Canonical(NewToolMessage("tc1", "search", "x")).IsTool())
	assert.False(t, Loose("user", "x").IsTool())
	assert.False(t, LooseContent("x").IsTool())
	assert.False(t, Canonical(NewHumanMessage("x")).IsTool())
}

func TestWrap(t *testing.T) {
	t.Parallel()

	msgs := []Message{NewHumanMessage("a"), NewAssistantMessage("b")}
	records := Wrap(msgs)
	assert.Len(t, records, 2)
	assert.Equal(t, msgs[0], records[0].Normalize())
	assert.Equal(t, msgs[1], records[1].Normalize())
}

func TestCompressTarget_Label(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", CompressAll.Label())
	assert.Equal(t, "(human only)", CompressHuman.Label())
	assert.Equal(t, "(assistant only)", CompressAssistant.Label())
	assert.True(t, CompressTarget("").Valid())
	assert.False(t, CompressTarget("everything").Valid())
}
