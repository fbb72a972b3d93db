package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/renewly/renewly/internal/app/service/checkpoint"
	"github.com/renewly/renewly/pkg/apperr"
	"github.com/renewly/renewly/pkg/types"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fakeSource struct {
	mu      sync.Mutex
	snap    *Snapshot
	status  types.SubscriptionStatus
	gone    bool
	fetches int
}

func (s *fakeSource) Fetch(_ context.Context, id string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	if s.gone || s.snap == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "subscription %s not found", id)
	}
	cp := *s.snap
	return &cp, nil
}

func (s *fakeSource) Status(_ context.Context, id string) (types.SubscriptionStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gone {
		return "", apperr.Newf(apperr.KindNotFound, "subscription %s not found", id)
	}
	return s.status, nil
}

func (s *fakeSource) setStatus(st types.SubscriptionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

type fakeNotifier struct {
	mu       sync.Mutex
	sent     []string // labels in send order
	failNext int
}

func (n *fakeNotifier) Send(_ context.Context, _ string, reminderType string, _ *Snapshot) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failNext > 0 {
		n.failNext--
		return errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, reminderType)
	return nil
}

func (n *fakeNotifier) labels() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

func newTestEngine(renew time.Time, now time.Time) (*Engine, *fakeSource, *fakeNotifier, *fakeClock, *checkpoint.Memory) {
	clock := &fakeClock{now: now}
	src := &fakeSource{
		snap: &Snapshot{
			SubscriptionID: "sub-1",
			Name:           "Netflix",
			Price:          15.99,
			Currency:       types.CurrencyUSD,
			Frequency:      types.SubscriptionFrequencyMonthly,
			PaymentMethod:  "visa",
			Status:         types.SubscriptionStatusActive,
			RenewDate:      renew,
			UserName:       "Ada",
			UserEmail:      "ada@example.com",
		},
		status: types.SubscriptionStatusActive,
	}
	notifier := &fakeNotifier{}
	cps := checkpoint.NewMemory()
	eng := NewEngine(src, cps, notifier, clock, zap.NewNop().Sugar())
	return eng, src, notifier, clock, cps
}

// drive re-invokes the run whenever it suspends, advancing the fake clock
// to each wake-up, the way the durable scheduler would.
func drive(t *testing.T, eng *Engine, clock *fakeClock, subID string) error {
	t.Helper()
	for i := 0; i < 10; i++ {
		err := eng.Run(context.Background(), subID)
		var susp *Suspension
		if errors.As(err, &susp) {
			clock.Set(susp.ResumeAt)
			continue
		}
		return err
	}
	t.Fatal("run did not terminate after 10 invocations")
	return nil
}

func TestRun_SendsAllFourRemindersInOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	renew := now.AddDate(0, 0, 10)
	eng, _, notifier, clock, _ := newTestEngine(renew, now)

	require.NoError(t, drive(t, eng, clock, "sub-1"))
	assert.Equal(t, []string{"7_days_before", "5_days_before", "2_days_before", "1_days_before"}, notifier.labels())
}

func TestRun_SuspendsUntilEachReminderDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	renew := now.AddDate(0, 0, 10)
	eng, _, notifier, _, _ := newTestEngine(renew, now)

	err := eng.Run(context.Background(), "sub-1")
	var susp *Suspension
	require.True(t, errors.As(err, &susp))
	assert.Equal(t, renew.AddDate(0, 0, -7), susp.ResumeAt)
	assert.Empty(t, notifier.labels(), "no reminder may fire before its date")
}

func TestRun_IdempotentForCompletedCheckpoints(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	renew := now.AddDate(0, 0, 10)
	eng, _, notifier, clock, cps := newTestEngine(renew, now)

	// mark the 5-day reminder as already delivered by a previous invocation
	require.NoError(t, cps.RecordCompleted(context.Background(), "sub-1", "5_days_before", nil))

	require.NoError(t, drive(t, eng, clock, "sub-1"))
	assert.Equal(t, []string{"7_days_before", "2_days_before", "1_days_before"}, notifier.labels())
}

func TestRun_ResumesAfterInterruption(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	renew := now.AddDate(0, 0, 10)
	eng, src, notifier, clock, cps := newTestEngine(renew, now)

	// first invocation: suspends at the 7-day mark
	err := eng.Run(context.Background(), "sub-1")
	var susp *Suspension
	require.True(t, errors.As(err, &susp))

	// wake at the 7-day mark, deliver, then "crash" right after the
	// checkpoint commits by observing the next suspension
	clock.Set(susp.ResumeAt)
	err = eng.Run(context.Background(), "sub-1")
	require.True(t, errors.As(err, &susp))
	require.Equal(t, []string{"7_days_before"}, notifier.labels())
	assert.Equal(t, renew.AddDate(0, 0, -5), susp.ResumeAt)

	// a fresh process re-invokes: must not re-fetch from the store, not
	// re-sleep the elapsed wait, and not resend the 7-day reminder
	fetchesBefore := src.fetches
	eng2 := NewEngine(src, cps, notifier, clock, zap.NewNop().Sugar())
	err = eng2.Run(context.Background(), "sub-1")
	require.True(t, errors.As(err, &susp))
	assert.Equal(t, renew.AddDate(0, 0, -5), susp.ResumeAt)
	assert.Equal(t, fetchesBefore, src.fetches, "fetch step must be memoized")
	assert.Equal(t, []string{"7_days_before"}, notifier.labels())
}

func TestRun_AbortsWhenSubscriptionCancelledMidRun(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	renew := now.AddDate(0, 0, 10)
	eng, src, notifier, clock, _ := newTestEngine(renew, now)

	// deliver the 7-day reminder
	err := eng.Run(context.Background(), "sub-1")
	var susp *Suspension
	require.True(t, errors.As(err, &susp))
	clock.Set(susp.ResumeAt)
	err = eng.Run(context.Background(), "sub-1")
	require.True(t, errors.As(err, &susp))
	require.Equal(t, []string{"7_days_before"}, notifier.labels())

	// cancel between checkpoints: remaining reminders must not fire and
	// the run must end without error
	src.setStatus(types.SubscriptionStatusInactive)
	clock.Set(susp.ResumeAt)
	require.NoError(t, eng.Run(context.Background(), "sub-1"))
	assert.Equal(t, []string{"7_days_before"}, notifier.labels())
}

func TestRun_MissingSubscriptionIsTerminalSuccess(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	eng, src, notifier, _, _ := newTestEngine(now.AddDate(0, 0, 10), now)
	src.gone = true

	require.NoError(t, eng.Run(context.Background(), "sub-1"))
	assert.Empty(t, notifier.labels())
}

func TestRun_NonActiveSubscriptionEndsRun(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	eng, src, notifier, _, _ := newTestEngine(now.AddDate(0, 0, 10), now)
	src.snap.Status = types.SubscriptionStatusExpired

	require.NoError(t, eng.Run(context.Background(), "sub-1"))
	assert.Empty(t, notifier.labels())
}

func TestRun_PastRenewalDateEndsRun(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	eng, src, notifier, _, _ := newTestEngine(now.AddDate(0, 0, -1), now)
	// status still reads active in the snapshot; the date guard must stop the run
	src.snap.Status = types.SubscriptionStatusActive

	require.NoError(t, eng.Run(context.Background(), "sub-1"))
	assert.Empty(t, notifier.labels())
}

func TestRun_TransientNotifierFailureRetriesWithoutDuplicates(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	renew := now.AddDate(0, 0, 10)
	eng, _, notifier, clock, _ := newTestEngine(renew, now)

	// reach the 7-day send and fail it once
	err := eng.Run(context.Background(), "sub-1")
	var susp *Suspension
	require.True(t, errors.As(err, &susp))
	clock.Set(susp.ResumeAt)

	notifier.failNext = 1
	err = eng.Run(context.Background(), "sub-1")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindTransient))
	assert.Empty(t, notifier.labels(), "failed send must not record a checkpoint")

	// host retries the same invocation: exactly one delivery results
	require.NoError(t, drive(t, eng, clock, "sub-1"))
	assert.Equal(t, []string{"7_days_before", "5_days_before", "2_days_before", "1_days_before"}, notifier.labels())
}

func TestRun_LateStartSendsElapsedRemindersImmediately(t *testing.T) {
	// Renewal only 3 days out: the 7- and 5-day marks are already past and
	// must fire immediately, in order, without sleeping.
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	renew := now.AddDate(0, 0, 3)
	eng, _, notifier, clock, _ := newTestEngine(renew, now)

	err := eng.Run(context.Background(), "sub-1")
	var susp *Suspension
	require.True(t, errors.As(err, &susp))
	assert.Equal(t, []string{"7_days_before", "5_days_before"}, notifier.labels())
	assert.Equal(t, renew.AddDate(0, 0, -2), susp.ResumeAt)

	require.NoError(t, drive(t, eng, clock, "sub-1"))
	assert.Equal(t, []string{"7_days_before", "5_days_before", "2_days_before", "1_days_before"}, notifier.labels())
}
