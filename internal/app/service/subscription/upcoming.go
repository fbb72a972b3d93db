package subscription

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/renewly/renewly/internal/models"
	"github.com/renewly/renewly/pkg/apperr"
	"github.com/renewly/renewly/pkg/types"
)

// Renewal is a subscription annotated with how many days remain until it
// renews.
type Renewal struct {
	*models.Subscription
	DaysUntilRenewal int `json:"days_until_renewal"`
}

// UpcomingRenewals groups the user's active subscriptions renewing within
// the next seven days by days-until-renewal.
type UpcomingRenewals struct {
	Total    int                   `json:"total_upcoming"`
	Renewals map[string][]*Renewal `json:"renewals"`
	Start    string                `json:"start"`
	End      string                `json:"end"`
}

// DaysUntil counts the days from now until renewDate, rounding partial
// days up the way a "renews in N days" banner would.
func DaysUntil(now, renewDate time.Time) int {
	return int(math.Ceil(renewDate.Sub(now).Hours() / 24))
}

func (s *Service) UpcomingRenewals(ctx context.Context, userID string) (*UpcomingRenewals, error) {
	now := time.Now()
	horizon := now.AddDate(0, 0, 7)

	var subs []*models.Subscription
	err := s.db.WithContext(ctx).Preload("User").
		Where("user_id = ? AND status = ?", userID, types.SubscriptionStatusActive).
		Where("renew_date >= ? AND renew_date <= ?", now, horizon).
		Order("renew_date asc").
		Find(&subs).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "list upcoming renewals", err)
	}

	renewals := lo.Map(subs, func(sub *models.Subscription, _ int) *Renewal {
		return &Renewal{Subscription: sub, DaysUntilRenewal: DaysUntil(now, sub.RenewDate)}
	})

	grouped := lo.GroupBy(renewals, func(r *Renewal) string {
		return fmt.Sprintf("in_%d_days", r.DaysUntilRenewal)
	})

	return &UpcomingRenewals{
		Total:    len(renewals),
		Renewals: grouped,
		Start:    now.Format("2006-01-02"),
		End:      horizon.Format("2006-01-02"),
	}, nil
}
