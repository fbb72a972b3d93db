package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renewly/renewly/internal/models"
	"github.com/renewly/renewly/pkg/apperr"
	"github.com/renewly/renewly/pkg/types"
)

func TestDeriveRenewDate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		freq types.SubscriptionFrequency
		want time.Time
	}{
		{"daily", types.SubscriptionFrequencyDaily, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"weekly", types.SubscriptionFrequencyWeekly, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)},
		{"monthly", types.SubscriptionFrequencyMonthly, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"yearly", types.SubscriptionFrequencyYearly, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveRenewDate(start, tt.freq)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DeriveRenewDate(start, "fortnightly")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestRecomputeStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status types.SubscriptionStatus
		renew  time.Time
		want   types.SubscriptionStatus
	}{
		{"active with future renewal stays active", types.SubscriptionStatusActive, now.AddDate(0, 0, 5), types.SubscriptionStatusActive},
		{"active past renewal flips to expired", types.SubscriptionStatusActive, now.AddDate(0, 0, -1), types.SubscriptionStatusExpired},
		{"inactive is never touched", types.SubscriptionStatusInactive, now.AddDate(0, 0, -10), types.SubscriptionStatusInactive},
		{"expired stays expired", types.SubscriptionStatusExpired, now.AddDate(0, 0, -10), types.SubscriptionStatusExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &models.Subscription{Status: tt.status, RenewDate: tt.renew}
			RecomputeStatus(sub, now)
			assert.Equal(t, tt.want, sub.Status)
		})
	}
}

func TestValidateCreate(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	valid := func() *CreateInput {
		return &CreateInput{
			Name:          "Netflix",
			Price:         15.99,
			Currency:      types.CurrencyUSD,
			Category:      types.CategoryOthers,
			PaymentMethod: "visa",
			Frequency:     types.SubscriptionFrequencyMonthly,
			StartDate:     now.AddDate(0, 0, -1),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*CreateInput)
		wantErr bool
	}{
		{"valid input", func(*CreateInput) {}, false},
		{"start date today is allowed", func(in *CreateInput) { in.StartDate = now }, false},
		{"start date in the future", func(in *CreateInput) { in.StartDate = now.AddDate(0, 0, 1) }, true},
		{"missing start date", func(in *CreateInput) { in.StartDate = time.Time{} }, true},
		{"name too short", func(in *CreateInput) { in.Name = "x" }, true},
		{"negative price", func(in *CreateInput) { in.Price = -1 }, true},
		{"unknown currency", func(in *CreateInput) { in.Currency = "BTC" }, true},
		{"unknown category", func(in *CreateInput) { in.Category = "games" }, true},
		{"missing payment method", func(in *CreateInput) { in.PaymentMethod = " " }, true},
		{"unknown frequency", func(in *CreateInput) { in.Frequency = "hourly" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(in)
			err := validateCreate(in, now)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.IsKind(err, apperr.KindValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUpdateFields(t *testing.T) {
	require.NoError(t, ValidateUpdateFields(map[string]interface{}{
		"name": "HBO", "price": 9.99, "status": "inactive",
	}))

	err := ValidateUpdateFields(map[string]interface{}{"renew_date": "2030-01-01"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	err = ValidateUpdateFields(map[string]interface{}{"user_id": "someone-else"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	err = ValidateUpdateFields(map[string]interface{}{})
	require.Error(t, err)
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 7, DaysUntil(now, now.AddDate(0, 0, 7)))
	assert.Equal(t, 1, DaysUntil(now, now.Add(2*time.Hour)), "partial days round up")
	assert.Equal(t, 3, DaysUntil(now, now.Add(2*24*time.Hour+time.Hour)))
}
