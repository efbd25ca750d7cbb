package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from GroupStatus
		to   GroupStatus
		want bool
	}{
		{StatusActive, StatusPaused, true},
		{StatusActive, StatusCancelled, true},
		{StatusPaused, StatusActive, true},
		{StatusPaused, StatusCancelled, true},
		{StatusCancelled, StatusActive, false},
		{StatusCancelled, StatusPaused, false},
		{StatusActive, StatusActive, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestSlot(t *testing.T) {
	s, err := ParseSlot("lunch")
	assert.NoError(t, err)
	assert.Equal(t, SlotLunch, s)

	_, err = ParseSlot("brunch")
	assert.Error(t, err)
	assert.Less(t, SlotBreakfast.StartOffset(), SlotDinner.StartOffset())
}
