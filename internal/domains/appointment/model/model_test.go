package model_test

import (
	"testing"

	"clinic/internal/domains/appointment/model"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		allowed  bool
	}{
		{model.StatusBooked, model.StatusConfirmed, true},
		{model.StatusBooked, model.StatusCancelled, true},
		{model.StatusBooked, model.StatusCompleted, false},
		{model.StatusConfirmed, model.StatusInProgress, true},
		{model.StatusConfirmed, model.StatusBooked, false},
		{model.StatusInProgress, model.StatusCompleted, true},
		{model.StatusInProgress, model.StatusCancelled, true},
		{model.StatusCompleted, model.StatusCancelled, false},
		{model.StatusCancelled, model.StatusBooked, false},
		{model.StatusConfirmed, model.StatusConfirmed, true},
		{model.StatusCancelled, model.StatusCancelled, true},
		{"rescheduled", "rescheduled", false},
		{model.StatusBooked, "rescheduled", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.allowed, model.CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, model.IsTerminal(model.StatusCompleted))
	assert.True(t, model.IsTerminal(model.StatusCancelled))
	assert.False(t, model.IsTerminal(model.StatusBooked))
	assert.False(t, model.IsTerminal(model.StatusInProgress))
	assert.False(t, model.IsTerminal("unknown"))
}

func TestSlotsCacheKey(t *testing.T) {
	assert.Equal(t, "appointment:slots:d-1:2030-01-07:0", model.SlotsCacheKey("d-1", "2030-01-07", 0))
	assert.Equal(t, "appointment:slots:d-1:2030-01-07:12", model.SlotsCacheKey("d-1", "2030-01-07", 12))
	assert.Equal(t, "appointment:slots_gen:d-1:2030-01-07", model.SlotsGenerationKey("d-1", "2030-01-07"))
	assert.Equal(t, "appointment:slots:d-1:*", model.DoctorSlotsPattern("d-1"))
}
