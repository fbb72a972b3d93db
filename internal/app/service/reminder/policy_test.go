package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule_FixedOrderAndLabels(t *testing.T) {
	renew := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	steps := Schedule(renew)
	require.Len(t, steps, 4)

	wantOffsets := []int{7, 5, 2, 1}
	wantLabels := []string{"7_days_before", "5_days_before", "2_days_before", "1_days_before"}
	for i, s := range steps {
		assert.Equal(t, wantOffsets[i], s.OffsetDays)
		assert.Equal(t, wantLabels[i], s.Label)
		assert.Equal(t, wantLabels[i]+"_sleep", s.SleepLabel())
		assert.True(t, s.ReminderAt(renew).Before(renew), "reminder %s must fire strictly before renewal", s.Label)
	}
}

func TestSchedule_Deterministic(t *testing.T) {
	renew := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, Schedule(renew), Schedule(renew))
}

func TestStep_ReminderAt(t *testing.T) {
	renew := time.Date(2025, 6, 30, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		offset int
		want   time.Time
	}{
		{7, time.Date(2025, 6, 23, 9, 30, 0, 0, time.UTC)},
		{5, time.Date(2025, 6, 25, 9, 30, 0, 0, time.UTC)},
		{2, time.Date(2025, 6, 28, 9, 30, 0, 0, time.UTC)},
		{1, time.Date(2025, 6, 29, 9, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		s := Step{OffsetDays: tt.offset}
		assert.Equal(t, tt.want, s.ReminderAt(renew))
	}
}
