package account

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/renewly/renewly/internal/models"
	"github.com/renewly/renewly/pkg/apperr"
	"github.com/renewly/renewly/pkg/logctx"
	"github.com/renewly/renewly/pkg/types"
)

// GraceWindow is how long a deactivated account may be reactivated.
const GraceWindow = 30 * 24 * time.Hour

// DeletionConfirmationPhrase must be supplied verbatim to permanently
// delete an account. Identity and credential checks happen upstream; this
// is the extra guard against an accidental invocation.
const DeletionConfirmationPhrase = "DELETE MY ACCOUNT PERMANENTLY"

var (
	// ErrReactivationExpired is returned when the grace window has lapsed.
	ErrReactivationExpired = apperr.New(apperr.KindConflict, "reactivation window expired")
	// ErrConfirmationMismatch is returned when the deletion confirmation
	// phrase does not match exactly.
	ErrConfirmationMismatch = apperr.New(apperr.KindConflict, "deletion confirmation phrase does not match")
)

// WithinGraceWindow reports whether an account deactivated at deactivatedAt
// may still be reactivated at now. A nil deactivatedAt means the account
// was never deactivated, which always passes.
func WithinGraceWindow(deactivatedAt *time.Time, now time.Time) bool {
	if deactivatedAt == nil {
		return true
	}
	return now.Sub(*deactivatedAt) <= GraceWindow
}

// Service owns the account state machine: active, deactivated (with the
// grace window), and permanent deletion. Every multi-entity transition runs
// in one transaction so the user and their subscriptions never disagree.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) Get(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.KindNotFound, "user %s not found", userID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "load user", err)
	}
	return &user, nil
}

func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "list users", err)
	}
	return users, nil
}

// Deactivate soft-deactivates the account and, in the same transaction,
// moves every owned subscription to inactive. No reader ever observes the
// user deactivated while a subscription is still active, or vice versa.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}

		err = tx.Model(user).Updates(map[string]interface{}{
			"is_active":           false,
			"deactivated_at":      now,
			"marked_for_deletion": false,
		}).Error
		if err != nil {
			return apperr.Wrap(apperr.KindTransient, "deactivate user", err)
		}

		err = tx.Model(&models.Subscription{}).
			Where("user_id = ?", userID).
			Update("status", types.SubscriptionStatusInactive).Error
		if err != nil {
			return apperr.Wrap(apperr.KindTransient, "deactivate subscriptions", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logctx.FromCtx(ctx, s.log).Infow("account deactivated", "user_id", userID)
	return nil
}

// Reactivate restores the account and its subscriptions, refusing once the
// grace window has lapsed. It does not purge the lapsed account.
func (s *Service) Reactivate(ctx context.Context, userID string) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}

		if !WithinGraceWindow(user.DeactivatedAt, now) {
			return ErrReactivationExpired
		}

		err = tx.Model(user).Updates(map[string]interface{}{
			"is_active":      true,
			"deactivated_at": nil,
		}).Error
		if err != nil {
			return apperr.Wrap(apperr.KindTransient, "reactivate user", err)
		}

		err = tx.Model(&models.Subscription{}).
			Where("user_id = ?", userID).
			Update("status", types.SubscriptionStatusActive).Error
		if err != nil {
			return apperr.Wrap(apperr.KindTransient, "reactivate subscriptions", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logctx.FromCtx(ctx, s.log).Infow("account reactivated", "user_id", userID)
	return nil
}

// DeletePermanently removes the user and every owned subscription in one
// transaction. Irreversible; requires the exact confirmation phrase.
func (s *Service) DeletePermanently(ctx context.Context, userID, confirmation string) error {
	if confirmation != DeletionConfirmationPhrase {
		return ErrConfirmationMismatch
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}

		err = tx.Where("user_id = ?", userID).Delete(&models.Subscription{}).Error
		if err != nil {
			return apperr.Wrap(apperr.KindTransient, "delete subscriptions", err)
		}
		if err := tx.Delete(user).Error; err != nil {
			return apperr.Wrap(apperr.KindTransient, "delete user", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logctx.FromCtx(ctx, s.log).Infow("account permanently deleted", "user_id", userID)
	return nil
}

// lockUser loads the user row FOR UPDATE so concurrent lifecycle
// transitions on the same account serialize.
func lockUser(tx *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.KindNotFound, "user %s not found", userID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "load user", err)
	}
	return &user, nil
}
