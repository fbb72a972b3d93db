package models

import (
	"time"

	"github.com/renewly/renewly/pkg/types"
)

// Subscription is one recurring subscription tracked for a user.
type Subscription struct {
	ID     string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID string `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Name   string `gorm:"column:name;type:varchar(50);not null" json:"name"`
	// Price is the renewal amount in the subscription's currency.
	Price         float64                    `gorm:"column:price;not null" json:"price"`
	Currency      types.Currency             `gorm:"column:currency;type:varchar(16);not null;default:'NAIRA'" json:"currency"`
	Category      types.SubscriptionCategory `gorm:"column:category;type:varchar(32)" json:"category"`
	PaymentMethod string                     `gorm:"column:payment_method;type:varchar(64);not null" json:"payment_method"`
	Status        types.SubscriptionStatus   `gorm:"column:status;type:varchar(16);not null;default:'active'" json:"status"`
	Frequency     types.SubscriptionFrequency `gorm:"column:frequency;type:varchar(16);not null" json:"frequency"`
	// StartDate must not be in the future at creation time.
	StartDate time.Time `gorm:"column:start_date;not null" json:"start_date"`
	// RenewDate is derived from StartDate + one billing period when absent.
	RenewDate time.Time `gorm:"column:renew_date;not null" json:"renew_date"`
	// CancelledAt is stamped when the subscription is cancelled directly
	// or swept up by a cancel-all.
	CancelledAt *time.Time `gorm:"column:cancelled_at;default:null" json:"cancelled_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// Renewing reports whether the subscription still has a renewal ahead of it.
func (s *Subscription) Renewing(now time.Time) bool {
	return s != nil &&
		s.Status == types.SubscriptionStatusActive &&
		s.RenewDate.After(now)
}
