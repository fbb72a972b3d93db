package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/renewly/renewly/internal/models"
	"github.com/renewly/renewly/pkg/apperr"
)

// ErrNotCompleted is returned by Result when no completion record exists
// for the requested (run, label) pair.
var ErrNotCompleted = errors.New("checkpoint: step not completed")

// Store persists which named steps of a workflow run have completed and
// what they produced, so a restarted run can skip completed steps instead
// of re-executing their side effects.
type Store interface {
	IsCompleted(ctx context.Context, runID, label string) (bool, error)
	// RecordCompleted marks the step done. A concurrent or duplicate record
	// for the same (runID, label) is a no-op; the first write wins.
	RecordCompleted(ctx context.Context, runID, label string, result []byte) error
	Result(ctx context.Context, runID, label string) ([]byte, error)
}

// GormStore keeps checkpoints in the workflow_checkpoint table, one row per
// (run_id, label), unique.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) IsCompleted(ctx context.Context, runID, label string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.WorkflowCheckpoint{}).
		Where("run_id = ? AND label = ?", runID, label).
		Count(&count).Error
	if err != nil {
		return false, apperr.Wrap(apperr.KindTransient, "checkpoint lookup", err)
	}
	return count > 0, nil
}

func (s *GormStore) RecordCompleted(ctx context.Context, runID, label string, result []byte) error {
	if len(result) == 0 {
		result = []byte("{}")
	}
	row := &models.WorkflowCheckpoint{
		RunID:       runID,
		Label:       label,
		Result:      datatypes.JSON(result),
		CompletedAt: time.Now(),
	}
	// ON CONFLICT DO NOTHING: the unique (run_id, label) index is the
	// atomicity guard against duplicate invocations of the same run.
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "run_id"}, {Name: "label"}},
			DoNothing: true,
		}).
		Create(row).Error
	if err != nil {
		return apperr.Wrap(apperr.KindTransient, "checkpoint record", err)
	}
	return nil
}

func (s *GormStore) Result(ctx context.Context, runID, label string) ([]byte, error) {
	var row models.WorkflowCheckpoint
	err := s.db.WithContext(ctx).
		Where("run_id = ? AND label = ?", runID, label).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotCompleted, runID, label)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "checkpoint result", err)
	}
	return []byte(row.Result), nil
}

var Module = fx.Options(
	fx.Provide(
		NewGormStore,
		func(s *GormStore) Store { return s },
	),
)
