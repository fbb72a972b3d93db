package reminder

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/renewly/renewly/internal/models"
	"github.com/renewly/renewly/pkg/apperr"
	"github.com/renewly/renewly/pkg/types"
)

// GormSource reads subscription state from postgres for the engine.
type GormSource struct {
	db    *gorm.DB
	clock Clock
}

func NewGormSource(db *gorm.DB, clock Clock) *GormSource {
	return &GormSource{db: db, clock: clock}
}

func (s *GormSource) Fetch(ctx context.Context, subscriptionID string) (*Snapshot, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Preload("User").
		First(&sub, "id = ?", subscriptionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.KindNotFound, "subscription %s not found", subscriptionID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "fetch subscription", err)
	}

	snap := &Snapshot{
		SubscriptionID: sub.ID,
		Name:           sub.Name,
		Price:          sub.Price,
		Currency:       sub.Currency,
		Frequency:      sub.Frequency,
		PaymentMethod:  sub.PaymentMethod,
		Status:         types.EffectiveStatus(sub.Status, sub.RenewDate, s.clock.Now()),
		RenewDate:      sub.RenewDate,
	}
	if sub.User != nil {
		snap.UserName = sub.User.Name
		snap.UserEmail = sub.User.Email
	}
	return snap, nil
}

func (s *GormSource) Status(ctx context.Context, subscriptionID string) (types.SubscriptionStatus, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).
		Select("status", "renew_date").
		First(&sub, "id = ?", subscriptionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Newf(apperr.KindNotFound, "subscription %s not found", subscriptionID)
	}
	if err != nil {
		return "", apperr.Wrap(apperr.KindTransient, "read subscription status", err)
	}
	return types.EffectiveStatus(sub.Status, sub.RenewDate, s.clock.Now()), nil
}
