package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to QueryState
		expected bool
	}{
		{StateIdle, StateSearching, true},
		{StateIdle, StateIndexUnavailable, true},
		{StateIdle, StateAnswered, false},
		{StateSearching, StateNoResults, true},
		{StateSearching, StateHasResults, true},
		{StateSearching, StateIndexUnavailable, true},
		{StateSearching, StateExplaining, false},
		{StateNoResults, StateAnswered, true},
		{StateNoResults, StateExplaining, false},
		{StateHasResults, StateExplaining, true},
		{StateHasResults, StateAnswered, true},
		{StateExplaining, StateAnswered, true},
		{StateExplaining, StateSearching, false},
		{StateAnswered, StateIdle, false},
		{StateIndexUnavailable, StateSearching, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expected, CanTransition(tt.from, tt.to))
		})
	}
}

func TestQueryState_IsTerminal(t *testing.T) {
	assert.True(t, StateAnswered.IsTerminal())
	assert.True(t, StateIndexUnavailable.IsTerminal())
	for _, s := range []QueryState{StateIdle, StateSearching, StateNoResults, StateHasResults, StateExplaining} {
		assert.False(t, s.IsTerminal(), s)
	}
}

func TestQueryMode_String(t *testing.T) {
	assert.Equal(t, "explain", QueryModeExplain.String())
	assert.Equal(t, "read_only", QueryModeReadOnly.String())
}
