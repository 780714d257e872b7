package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindJSON(t *testing.T) {
	t.Run("object surrounded by prose and fences", func(t *testing.T) {
		v, ok := findJSON("Sure! ```json\n{\"a\": \"}{\", \"b\": [1, 2]}\n``` hope that helps {\"c\": 1}")
		require.True(t, ok)

		obj, isObj := v.(map[string]any)
		require.True(t, isObj)
		assert.Equal(t, "}{", obj["a"])
		assert.NotContains(t, obj, "c")
	})

	t.Run("escaped quotes inside strings", func(t *testing.T) {
		v, ok := findJSON(`{"summary": "she said \"hi {there}\""}`)
		require.True(t, ok)
		assert.Equal(t, `she said "hi {there}"`, v.(map[string]any)["summary"])
	})

	t.Run("skips undecodable bracketed prose", func(t *testing.T) {
		v, ok := findJSON(`[note] {"relevant": true}`)
		require.True(t, ok)
		assert.Equal(t, true, v.(map[string]any)["relevant"])
	})

	t.Run("unterminated outer bracket", func(t *testing.T) {
		v, ok := findJSON(`[ {"relevant": false}`)
		require.True(t, ok)
		assert.Equal(t, false, v.(map[string]any)["relevant"])
	})

	t.Run("array", func(t *testing.T) {
		v, ok := findJSON(`result: ["a", "b"]`)
		require.True(t, ok)
		assert.Equal(t, []any{"a", "b"}, v)
	})

	t.Run("repairs missing key quotes", func(t *testing.T) {
		v, ok := findJSON(`{type": "task", priority": 2}`)
		require.True(t, ok)

		obj := v.(map[string]any)
		assert.Equal(t, "task", obj["type"])
		assert.Equal(t, float64(2), obj["priority"])
	})

	t.Run("no JSON", func(t *testing.T) {
		_, ok := findJSON("I am not able to help with that.")
		assert.False(t, ok)
	})

	t.Run("truncated object", func(t *testing.T) {
		_, ok := findJSON(`{"relevant": true, "confidence": 0.`)
		assert.False(t, ok)
	})
}

func TestRepairKeyQuotes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "first key", in: `{type": "note"}`, want: `{"type": "note"}`},
		{name: "after comma with space", in: `{"a": 1, action_items": []}`, want: `{"a": 1, "action_items": []}`},
		{name: "valid JSON untouched", in: `{"a": "b, c"}`, want: `{"a": "b, c"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairKeyQuotes(tt.in))
		})
	}
}
