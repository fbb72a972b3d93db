package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renewly/renewly/internal/app/service/reminder"
	"github.com/renewly/renewly/pkg/types"
)

func testSnapshot() *reminder.Snapshot {
	return &reminder.Snapshot{
		SubscriptionID: "sub-1",
		Name:           "Netflix",
		Price:          15.99,
		Currency:       types.CurrencyUSD,
		Frequency:      types.SubscriptionFrequencyMonthly,
		PaymentMethod:  "visa",
		RenewDate:      time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		UserName:       "Ada",
		UserEmail:      "ada@example.com",
	}
}

func TestTemplates_CoverEveryScheduleLabel(t *testing.T) {
	for _, step := range reminder.Schedule(time.Now().AddDate(0, 1, 0)) {
		_, ok := templates[step.Label]
		assert.True(t, ok, "missing template for %s", step.Label)
	}
}

func TestTemplates_RenderSubscriptionDetails(t *testing.T) {
	snap := testSnapshot()
	info := newMailInfo(snap)

	for label, tpl := range templates {
		subject := tpl.subject(info)
		body := tpl.body(info)

		assert.Contains(t, subject, "Netflix", "subject for %s", label)
		assert.Contains(t, body, "Hello Ada", "body for %s", label)
		assert.Contains(t, body, "USD 15.99 (monthly)", "body for %s", label)
		assert.Contains(t, body, "Jun 30, 2025", "body for %s", label)
		assert.Contains(t, body, "visa", "body for %s", label)
	}
}

func TestFormatPrice(t *testing.T) {
	snap := testSnapshot()
	require.Equal(t, "USD 15.99 (monthly)", formatPrice(snap))

	snap.Price = 1200
	snap.Currency = types.CurrencyNaira
	snap.Frequency = types.SubscriptionFrequencyYearly
	require.Equal(t, "NAIRA 1200 (yearly)", formatPrice(snap))
}
