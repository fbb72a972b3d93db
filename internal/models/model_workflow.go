package models

import (
	"time"

	"gorm.io/datatypes"
)

type WorkflowRunStatus string

const (
	WorkflowRunStatusPending   WorkflowRunStatus = "pending"
	WorkflowRunStatusCompleted WorkflowRunStatus = "completed"
)

// WorkflowRun is one durable execution of the reminder schedule for a
// subscription. The run id is the subscription id: at most one run per
// subscription is live at a time, and re-triggering revives the same row.
type WorkflowRun struct {
	ID     string            `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Status WorkflowRunStatus `gorm:"column:status;type:varchar(16);not null;default:'pending';index" json:"status"`
	// ResumeAt is the earliest instant the run should be invoked again.
	// Nil means the run is due immediately.
	ResumeAt *time.Time `gorm:"column:resume_at;default:null;index" json:"resume_at"`
	// Attempts counts consecutive failed invocations since the last
	// successful step; it resets once the run progresses.
	Attempts  int     `gorm:"column:attempts;not null;default:0" json:"attempts"`
	LastError *string `gorm:"column:last_error;type:text;default:null" json:"last_error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WorkflowRun) TableName() string {
	return "workflow_run"
}

// WorkflowCheckpoint is a durably recorded completion marker for one named
// step of a workflow run. Once a (run_id, label) row exists, the step is
// never executed again by any resumption of that run.
type WorkflowCheckpoint struct {
	RunID string `gorm:"column:run_id;type:uuid;not null;uniqueIndex:uq_run_label,priority:1" json:"run_id"`
	Label string `gorm:"column:label;type:varchar(64);not null;uniqueIndex:uq_run_label,priority:2" json:"label"`
	// Result holds the step's recorded output, replayed on resumption
	// instead of re-running the step.
	Result      datatypes.JSON `gorm:"column:result;type:jsonb;default:'{}'" json:"result"`
	CompletedAt time.Time      `gorm:"column:completed_at;not null" json:"completed_at"`
}

func (WorkflowCheckpoint) TableName() string {
	return "workflow_checkpoint"
}
