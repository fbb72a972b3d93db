package types

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
	SubscriptionStatusExpired  SubscriptionStatus = "expired"
)

type SubscriptionFrequency string

const (
	SubscriptionFrequencyDaily   SubscriptionFrequency = "daily"
	SubscriptionFrequencyWeekly  SubscriptionFrequency = "weekly"
	SubscriptionFrequencyMonthly SubscriptionFrequency = "monthly"
	SubscriptionFrequencyYearly  SubscriptionFrequency = "yearly"
)

// RenewPeriod returns the length of one billing cycle for the frequency.
// Monthly is a 30-day approximation, yearly a 365-day one.
func (f SubscriptionFrequency) RenewPeriod() (time.Duration, bool) {
	switch f {
	case SubscriptionFrequencyDaily:
		return 24 * time.Hour, true
	case SubscriptionFrequencyWeekly:
		return 7 * 24 * time.Hour, true
	case SubscriptionFrequencyMonthly:
		return 30 * 24 * time.Hour, true
	case SubscriptionFrequencyYearly:
		return 365 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// EffectiveStatus applies the expiry invariant: an active subscription whose
// renewal date is already behind now reads as expired. Other statuses pass
// through untouched.
func EffectiveStatus(status SubscriptionStatus, renewDate, now time.Time) SubscriptionStatus {
	if status == SubscriptionStatusActive && renewDate.Before(now) {
		return SubscriptionStatusExpired
	}
	return status
}

type Currency string

const (
	CurrencyNaira Currency = "NAIRA"
	CurrencyUSD   Currency = "USD"
	CurrencyEUR   Currency = "EUR"
	CurrencyGBP   Currency = "GBP"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyNaira, CurrencyUSD, CurrencyEUR, CurrencyGBP:
		return true
	}
	return false
}

type SubscriptionCategory string

const (
	CategorySports    SubscriptionCategory = "sports"
	CategoryBusiness  SubscriptionCategory = "business"
	CategoryFinance   SubscriptionCategory = "finance"
	CategoryPolitical SubscriptionCategory = "political"
	CategoryOthers    SubscriptionCategory = "others"
)

func (c SubscriptionCategory) Valid() bool {
	switch c {
	case CategorySports, CategoryBusiness, CategoryFinance, CategoryPolitical, CategoryOthers:
		return true
	}
	return false
}
