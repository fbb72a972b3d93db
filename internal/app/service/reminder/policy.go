package reminder

import (
	"fmt"
	"time"
)

// reminderOffsets are the days-before-renewal checkpoints, processed in
// this exact order. The order must stay deterministic: resumed runs replay
// the same schedule and skip by label.
var reminderOffsets = []int{7, 5, 2, 1}

// Step is one entry of the reminder schedule.
type Step struct {
	OffsetDays int
	Label      string
}

// ReminderAt is the instant this step's reminder should fire for the
// given renewal date.
func (s Step) ReminderAt(renewDate time.Time) time.Time {
	return renewDate.AddDate(0, 0, -s.OffsetDays)
}

// SleepLabel keys the step's elapsed-wait checkpoint, distinct from the
// send checkpoint so an interrupted run never re-sleeps a finished wait.
func (s Step) SleepLabel() string {
	return s.Label + "_sleep"
}

// Schedule maps a renewal date to the ordered reminder steps. Pure and
// deterministic: the same renewDate always yields the same schedule.
func Schedule(renewDate time.Time) []Step {
	steps := make([]Step, 0, len(reminderOffsets))
	for _, d := range reminderOffsets {
		steps = append(steps, Step{
			OffsetDays: d,
			Label:      fmt.Sprintf("%d_days_before", d),
		})
	}
	return steps
}
