package subscription

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/renewly/renewly/internal/models"
	"github.com/renewly/renewly/pkg/apperr"
	"github.com/renewly/renewly/pkg/config"
	"github.com/renewly/renewly/pkg/logctx"
	"github.com/renewly/renewly/pkg/tool"
	"github.com/renewly/renewly/pkg/types"
)

// RunEnqueuer starts the reminder workflow run for a subscription. The
// scheduler satisfies it; tests stub it.
type RunEnqueuer interface {
	Enqueue(ctx context.Context, subscriptionID string) error
}

// Service owns subscription status transitions and renewal-date derivation.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	runs RunEnqueuer
	log  *zap.SugaredLogger
}

func NewService(cfg *config.Config, db *gorm.DB, runs RunEnqueuer, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, db: db, runs: runs, log: log}
}

// CreateInput carries the caller-supplied fields for a new subscription.
type CreateInput struct {
	Name          string
	Price         float64
	Currency      types.Currency
	Category      types.SubscriptionCategory
	PaymentMethod string
	Frequency     types.SubscriptionFrequency
	StartDate     time.Time
	// RenewDate may be omitted; it is then derived as StartDate plus one
	// billing period.
	RenewDate *time.Time
}

// DeriveRenewDate computes startDate plus one billing period for the
// frequency. Monthly uses the 30-day approximation.
func DeriveRenewDate(startDate time.Time, freq types.SubscriptionFrequency) (time.Time, error) {
	period, ok := freq.RenewPeriod()
	if !ok {
		return time.Time{}, apperr.Newf(apperr.KindValidation, "unknown frequency %q", freq)
	}
	return startDate.Add(period), nil
}

// RecomputeStatus applies the expiry invariant in place: active past the
// renewal date reads as expired, other statuses are untouched.
func RecomputeStatus(sub *models.Subscription, now time.Time) {
	sub.Status = types.EffectiveStatus(sub.Status, sub.RenewDate, now)
}

func validateCreate(in *CreateInput, now time.Time) error {
	name := strings.TrimSpace(in.Name)
	if len(name) < 2 || len(name) > 50 {
		return apperr.New(apperr.KindValidation, "name must be 2-50 characters")
	}
	if in.Price < 0 {
		return apperr.New(apperr.KindValidation, "price must not be negative")
	}
	if in.Currency != "" && !in.Currency.Valid() {
		return apperr.Newf(apperr.KindValidation, "unknown currency %q", in.Currency)
	}
	if in.Category != "" && !in.Category.Valid() {
		return apperr.Newf(apperr.KindValidation, "unknown category %q", in.Category)
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return apperr.New(apperr.KindValidation, "payment method is required")
	}
	if _, ok := in.Frequency.RenewPeriod(); !ok {
		return apperr.Newf(apperr.KindValidation, "unknown frequency %q", in.Frequency)
	}
	if in.StartDate.IsZero() {
		return apperr.New(apperr.KindValidation, "start date is required")
	}
	if in.StartDate.After(now) {
		return apperr.New(apperr.KindValidation, "start date must not be in the future")
	}
	return nil
}

// Create validates the input, derives the renewal date when absent, stores
// the subscription, and enqueues its reminder workflow run.
func (s *Service) Create(ctx context.Context, userID string, in *CreateInput) (*models.Subscription, error) {
	now := time.Now()
	if err := validateCreate(in, now); err != nil {
		return nil, err
	}

	renewDate := time.Time{}
	if in.RenewDate != nil {
		renewDate = *in.RenewDate
	} else {
		derived, err := DeriveRenewDate(in.StartDate, in.Frequency)
		if err != nil {
			return nil, err
		}
		renewDate = derived
	}
	if !renewDate.After(in.StartDate) {
		return nil, apperr.New(apperr.KindValidation, "renewal date must be after the start date")
	}

	currency := in.Currency
	if currency == "" {
		currency = types.CurrencyNaira
	}

	sub := &models.Subscription{
		ID:            tool.GenerateUUIDV7(),
		UserID:        userID,
		Name:          strings.TrimSpace(in.Name),
		Price:         in.Price,
		Currency:      currency,
		Category:      in.Category,
		PaymentMethod: in.PaymentMethod,
		Status:        types.EffectiveStatus(types.SubscriptionStatusActive, renewDate, now),
		Frequency:     in.Frequency,
		StartDate:     in.StartDate,
		RenewDate:     renewDate,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.User
		if err := tx.First(&owner, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Newf(apperr.KindNotFound, "user %s not found", userID)
			}
			return apperr.Wrap(apperr.KindTransient, "load owner", err)
		}
		if err := tx.Create(sub).Error; err != nil {
			return apperr.Wrap(apperr.KindTransient, "create subscription", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.runs.Enqueue(ctx, sub.ID); err != nil {
		// The subscription exists; the run can be revived through the
		// workflow trigger endpoint.
		logctx.FromCtx(ctx, s.log).Errorw("failed to enqueue reminder run",
			"subscription_id", sub.ID, "err", err)
	}

	return sub, nil
}

// allowedUpdateFields is the closed set of caller-mutable columns.
var allowedUpdateFields = map[string]struct{}{
	"name":           {},
	"price":          {},
	"currency":       {},
	"category":       {},
	"payment_method": {},
	"status":         {},
	"frequency":      {},
}

// ValidateUpdateFields rejects any attempt to touch a restricted column.
func ValidateUpdateFields(updates map[string]interface{}) error {
	for field := range updates {
		if _, ok := allowedUpdateFields[field]; !ok {
			return apperr.Newf(apperr.KindValidation, "field %q cannot be updated", field)
		}
	}
	if len(updates) == 0 {
		return apperr.New(apperr.KindValidation, "no fields to update")
	}
	return nil
}

// Update applies an owner's partial update restricted to mutable fields.
func (s *Service) Update(ctx context.Context, userID, subscriptionID string, updates map[string]interface{}) (*models.Subscription, error) {
	if err := ValidateUpdateFields(updates); err != nil {
		return nil, err
	}

	sub, err := s.owned(ctx, s.db, userID, subscriptionID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(sub).Updates(updates).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "update subscription", err)
	}
	return s.Get(ctx, userID, subscriptionID)
}

// Cancel transitions the subscription to inactive and stamps cancelledAt.
func (s *Service) Cancel(ctx context.Context, userID, subscriptionID string) (*models.Subscription, error) {
	sub, err := s.owned(ctx, s.db, userID, subscriptionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Model(sub).Updates(map[string]interface{}{
		"status":       types.SubscriptionStatusInactive,
		"cancelled_at": now,
	}).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "cancel subscription", err)
	}
	sub.Status = types.SubscriptionStatusInactive
	sub.CancelledAt = &now
	return sub, nil
}

// CancelAll bulk-cancels every active subscription the user owns and
// returns the number affected. Zero affected is success, not an error.
func (s *Service) CancelAll(ctx context.Context, userID string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND status = ?", userID, types.SubscriptionStatusActive).
		Updates(map[string]interface{}{
			"status":       types.SubscriptionStatusInactive,
			"cancelled_at": time.Now(),
		})
	if res.Error != nil {
		return 0, apperr.Wrap(apperr.KindTransient, "cancel all subscriptions", res.Error)
	}
	logctx.FromCtx(ctx, s.log).Infow("cancelled subscriptions in bulk",
		"user_id", userID, "count", res.RowsAffected)
	return res.RowsAffected, nil
}

// Delete removes the subscription permanently.
func (s *Service) Delete(ctx context.Context, userID, subscriptionID string) error {
	sub, err := s.owned(ctx, s.db, userID, subscriptionID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(sub).Error; err != nil {
		return apperr.Wrap(apperr.KindTransient, "delete subscription", err)
	}
	return nil
}

// Get returns one subscription with its owner, applying the expiry
// invariant on the way out.
func (s *Service) Get(ctx context.Context, userID, subscriptionID string) (*models.Subscription, error) {
	sub, err := s.owned(ctx, s.db.Preload("User"), userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	RecomputeStatus(sub, time.Now())
	return sub, nil
}

// ListByUser returns the user's subscriptions, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*models.Subscription, error) {
	var subs []*models.Subscription
	err := s.db.WithContext(ctx).Preload("User").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&subs).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "list subscriptions", err)
	}
	now := time.Now()
	for _, sub := range subs {
		RecomputeStatus(sub, now)
	}
	return subs, nil
}

func (s *Service) owned(ctx context.Context, db *gorm.DB, userID, subscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.WithContext(ctx).First(&sub, "id = ?", subscriptionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.KindNotFound, "subscription %s not found", subscriptionID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "load subscription", err)
	}
	if sub.UserID != userID {
		return nil, apperr.New(apperr.KindAuthorization, "not the owner of this subscription")
	}
	return &sub, nil
}
