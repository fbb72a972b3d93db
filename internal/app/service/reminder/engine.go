package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/renewly/renewly/internal/app/service/checkpoint"
	"github.com/renewly/renewly/pkg/apperr"
	"github.com/renewly/renewly/pkg/logctx"
	"github.com/renewly/renewly/pkg/metrics"
	"github.com/renewly/renewly/pkg/types"
)

const fetchLabel = "fetch"

// Snapshot is the subscription view captured by the fetch step and replayed
// on every resumption of the run. Status here is the memoized value; the
// engine re-reads the live status before each send.
type Snapshot struct {
	SubscriptionID string                      `json:"subscription_id"`
	Name           string                      `json:"name"`
	Price          float64                     `json:"price"`
	Currency       types.Currency              `json:"currency"`
	Frequency      types.SubscriptionFrequency `json:"frequency"`
	PaymentMethod  string                      `json:"payment_method"`
	Status         types.SubscriptionStatus    `json:"status"`
	RenewDate      time.Time                   `json:"renew_date"`
	UserName       string                      `json:"user_name"`
	UserEmail      string                      `json:"user_email"`
}

// Source loads subscription state for the engine.
type Source interface {
	// Fetch returns the subscription with its owner. A missing subscription
	// is a not-found kind error; the engine treats it as terminal success.
	Fetch(ctx context.Context, subscriptionID string) (*Snapshot, error)
	// Status is a fresh, non-memoized read of the effective status.
	Status(ctx context.Context, subscriptionID string) (types.SubscriptionStatus, error)
}

// Notifier delivers one reminder email. Failures are retryable.
type Notifier interface {
	Send(ctx context.Context, to string, reminderType string, snap *Snapshot) error
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Suspension is returned by Run when the next reminder lies in the future.
// The host must invoke the same run again no earlier than ResumeAt; the
// checkpoint guard makes earlier or duplicate invocations harmless.
type Suspension struct {
	ResumeAt time.Time
}

func (s *Suspension) Error() string {
	return fmt.Sprintf("run suspended until %s", s.ResumeAt.Format(time.RFC3339))
}

// Engine drives one reminder workflow run per subscription. Runs are
// resumable: every step is guarded by a checkpoint, so re-invoking a run
// after a crash produces the same observable side effects as an
// uninterrupted execution.
type Engine struct {
	src      Source
	cps      checkpoint.Store
	notifier Notifier
	clock    Clock
	log      *zap.SugaredLogger
}

func NewEngine(src Source, cps checkpoint.Store, notifier Notifier, clock Clock, log *zap.SugaredLogger) *Engine {
	return &Engine{src: src, cps: cps, notifier: notifier, clock: clock, log: log}
}

// Run executes the reminder schedule for the subscription as far as the
// clock allows. It returns nil when the run is terminally complete, a
// *Suspension when it should be re-invoked later, and a transient-kind
// error when a step failed and the whole invocation should be retried.
func (e *Engine) Run(ctx context.Context, subscriptionID string) error {
	runID := subscriptionID
	log := logctx.FromCtx(ctx, e.log).With("run_id", runID)

	snap, err := e.fetch(ctx, runID, subscriptionID)
	if err != nil {
		return err
	}
	if snap == nil {
		log.Infow("subscription gone, nothing to remind")
		return nil
	}
	if snap.Status != types.SubscriptionStatusActive {
		log.Infow("subscription not active, ending run", "status", snap.Status)
		return nil
	}
	if !snap.RenewDate.After(e.clock.Now()) {
		log.Infow("renewal date already passed, ending run", "renew_date", snap.RenewDate)
		return nil
	}

	for _, step := range Schedule(snap.RenewDate) {
		done, err := e.cps.IsCompleted(ctx, runID, step.Label)
		if err != nil {
			return err
		}
		if done {
			continue
		}

		if err := e.sleepUntil(ctx, runID, step, snap.RenewDate); err != nil {
			return err
		}

		// Fresh read: the subscription may have been cancelled or its owner
		// deactivated while the run slept.
		status, err := e.src.Status(ctx, subscriptionID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				log.Infow("subscription deleted mid-run, ending run")
				return nil
			}
			return err
		}
		if status != types.SubscriptionStatusActive {
			log.Infow("subscription no longer active, aborting remaining reminders", "status", status)
			return nil
		}

		if err := e.trigger(ctx, runID, step, snap); err != nil {
			return err
		}
		log.Infow("reminder sent", "label", step.Label, "to", snap.UserEmail)
	}

	log.Infow("all reminders processed")
	return nil
}

// fetch is the memoized first step. It returns (nil, nil) when the
// subscription legitimately does not exist: nothing to do, not an error.
func (e *Engine) fetch(ctx context.Context, runID, subscriptionID string) (*Snapshot, error) {
	done, err := e.cps.IsCompleted(ctx, runID, fetchLabel)
	if err != nil {
		return nil, err
	}
	if done {
		raw, err := e.cps.Result(ctx, runID, fetchLabel)
		if err != nil {
			return nil, err
		}
		var snap Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, apperr.Wrap(apperr.KindTransient, "decode fetch checkpoint", err)
		}
		return &snap, nil
	}

	snap, err := e.src.Fetch(ctx, subscriptionID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "encode fetch checkpoint", err)
	}
	if err := e.cps.RecordCompleted(ctx, runID, fetchLabel, raw); err != nil {
		return nil, err
	}
	return snap, nil
}

// sleepUntil suspends the run until the step's reminder instant. The wait
// is checkpointed under its own label so a resumed run never re-sleeps an
// already-elapsed wait, even if the clock later disagrees.
func (e *Engine) sleepUntil(ctx context.Context, runID string, step Step, renewDate time.Time) error {
	slept, err := e.cps.IsCompleted(ctx, runID, step.SleepLabel())
	if err != nil {
		return err
	}
	if slept {
		return nil
	}

	remindAt := step.ReminderAt(renewDate)
	now := e.clock.Now()
	if remindAt.After(now) {
		return &Suspension{ResumeAt: remindAt}
	}

	result, _ := json.Marshal(map[string]any{"woke_at": now})
	return e.cps.RecordCompleted(ctx, runID, step.SleepLabel(), result)
}

// trigger sends the reminder and records completion only after the send
// succeeds. A crash in between retries the send; the checkpoint insert
// dedupes concurrent duplicates to effectively one delivery.
func (e *Engine) trigger(ctx context.Context, runID string, step Step, snap *Snapshot) error {
	if err := e.notifier.Send(ctx, snap.UserEmail, step.Label, snap); err != nil {
		return apperr.Wrap(apperr.KindTransient, fmt.Sprintf("send %s reminder", step.Label), err)
	}
	metrics.ReminderSent.WithLabelValues(step.Label).Inc()

	result, _ := json.Marshal(map[string]any{
		"sent_at": e.clock.Now(),
		"to":      snap.UserEmail,
	})
	return e.cps.RecordCompleted(ctx, runID, step.Label, result)
}
