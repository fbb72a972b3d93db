package scheduler

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/renewly/renewly/internal/app/service/reminder"
	"github.com/renewly/renewly/internal/models"
	"github.com/renewly/renewly/pkg/apperr"
	"github.com/renewly/renewly/pkg/config"
	"github.com/renewly/renewly/pkg/metrics"
)

// Service is the durable timer behind the reminder workflow engine. It
// persists one workflow_run row per subscription and re-invokes the engine
// for each due run: immediately after enqueue, at every wake-up a
// suspension asks for, and with backoff after transient failures. Any host
// able to "invoke this run again no earlier than T" could replace it.
type Service struct {
	db     *gorm.DB
	engine *reminder.Engine
	cfg    *config.Config
	log    *zap.SugaredLogger
}

func NewService(db *gorm.DB, engine *reminder.Engine, cfg *config.Config, log *zap.SugaredLogger) *Service {
	return &Service{db: db, engine: engine, cfg: cfg, log: log}
}

// Enqueue registers (or revives) the workflow run for a subscription. The
// run id is the subscription id, so a duplicate trigger lands on the same
// row and the checkpoint guard keeps re-execution harmless.
func (s *Service) Enqueue(ctx context.Context, subscriptionID string) error {
	run := &models.WorkflowRun{
		ID:     subscriptionID,
		Status: models.WorkflowRunStatusPending,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":     models.WorkflowRunStatusPending,
				"resume_at":  nil,
				"attempts":   0,
				"last_error": nil,
			}),
		}).
		Create(run).Error
	if err != nil {
		return apperr.Wrap(apperr.KindTransient, "enqueue workflow run", err)
	}
	return nil
}

// Tick scans for due runs and drives each one a step further. It is called
// by the poll loop but exported so the trigger endpoint and tests can force
// a pass.
func (s *Service) Tick(ctx context.Context) error {
	now := time.Now()
	var due []*models.WorkflowRun
	err := s.db.WithContext(ctx).
		Where("status = ?", models.WorkflowRunStatusPending).
		Where("resume_at IS NULL OR resume_at <= ?", now).
		// Parked runs (retries exhausted) wait for a fresh trigger, which
		// resets attempts through Enqueue.
		Where("attempts < ?", s.cfg.Scheduler.MaxAttempts).
		Order("resume_at asc nulls first").
		Limit(s.cfg.Scheduler.BatchSize).
		Find(&due).Error
	if err != nil {
		return apperr.Wrap(apperr.KindTransient, "scan due workflow runs", err)
	}

	metrics.WorkflowRunsDue.Set(float64(len(due)))

	for _, run := range due {
		s.dispatch(ctx, run, now)
	}
	return nil
}

func (s *Service) dispatch(ctx context.Context, run *models.WorkflowRun, now time.Time) {
	if run.ResumeAt != nil && now.Sub(*run.ResumeAt) > s.cfg.Scheduler.StaleAfter {
		// A wake-up this late means the timer infrastructure failed its
		// contract. Surface it; do not swallow it in retry noise.
		metrics.TimerOverdue.Inc()
		fault := apperr.Newf(apperr.KindFatalScheduling,
			"run %s woke %s late", run.ID, now.Sub(*run.ResumeAt))
		s.log.Errorw("durable timer missed its wake-up", "run_id", run.ID,
			"resume_at", run.ResumeAt, "err", fault)
	}

	err := s.engine.Run(ctx, run.ID)

	var susp *reminder.Suspension
	switch {
	case err == nil:
		s.complete(ctx, run)
	case errors.As(err, &susp):
		s.reschedule(ctx, run, susp.ResumeAt, "")
	default:
		s.retry(ctx, run, err)
	}
}

func (s *Service) complete(ctx context.Context, run *models.WorkflowRun) {
	err := s.db.WithContext(ctx).Model(run).Updates(map[string]interface{}{
		"status":     models.WorkflowRunStatusCompleted,
		"resume_at":  nil,
		"attempts":   0,
		"last_error": nil,
	}).Error
	if err != nil {
		s.log.Errorw("failed to mark run completed", "run_id", run.ID, "err", err)
		return
	}
	s.log.Infow("workflow run completed", "run_id", run.ID)
}

func (s *Service) reschedule(ctx context.Context, run *models.WorkflowRun, resumeAt time.Time, lastErr string) {
	updates := map[string]interface{}{
		"resume_at": resumeAt,
		"attempts":  0,
	}
	if lastErr != "" {
		updates["attempts"] = run.Attempts + 1
		updates["last_error"] = lastErr
	} else {
		updates["last_error"] = nil
	}
	if err := s.db.WithContext(ctx).Model(run).Updates(updates).Error; err != nil {
		s.log.Errorw("failed to reschedule run", "run_id", run.ID, "err", err)
		return
	}
	s.log.Infow("workflow run suspended", "run_id", run.ID, "resume_at", resumeAt)
}

func (s *Service) retry(ctx context.Context, run *models.WorkflowRun, cause error) {
	attempt := run.Attempts + 1
	if attempt >= s.cfg.Scheduler.MaxAttempts {
		// Park without a resume time; an operator (or a fresh trigger)
		// has to revive it. The last error stays on the row.
		err := s.db.WithContext(ctx).Model(run).Updates(map[string]interface{}{
			"attempts":   attempt,
			"resume_at":  nil,
			"status":     models.WorkflowRunStatusPending,
			"last_error": cause.Error(),
		}).Error
		if err != nil {
			s.log.Errorw("failed to park run", "run_id", run.ID, "err", err)
		}
		s.log.Errorw("workflow run exhausted retries", "run_id", run.ID,
			"attempts", attempt, "err", cause)
		return
	}

	resumeAt := time.Now().Add(Backoff(attempt))
	s.reschedule(ctx, run, resumeAt, cause.Error())
	s.log.Warnw("workflow run failed, will retry", "run_id", run.ID,
		"attempt", attempt, "resume_at", resumeAt, "err", cause)
}

const (
	backoffBase = 30 * time.Second
	backoffMax  = 30 * time.Minute
)

// Backoff returns the exponential retry delay for the given attempt
// (1-based), capped at backoffMax.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(float64(backoffBase) * math.Pow(2, float64(attempt-1)))
	if d > backoffMax || d <= 0 {
		return backoffMax
	}
	return d
}

// loop runs Tick on the configured interval until ctx is done.
func (s *Service) loop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Scheduler.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.log.Errorw("scheduler tick failed", "err", err)
			}
		}
	}
}
