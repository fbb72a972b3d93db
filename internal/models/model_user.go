package models

import "time"

// User is an account owner. Accounts are created by the auth flow; this
// service only drives the deactivate/reactivate/delete lifecycle.
type User struct {
	ID    string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name  string `gorm:"column:name;type:varchar(64);not null" json:"name"`
	Email string `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	// IsActive is false while the account sits in the deactivation grace window.
	IsActive bool `gorm:"column:is_active;not null;default:true" json:"is_active"`
	// DeactivatedAt is set when the account is soft-deactivated and cleared on reactivation.
	DeactivatedAt *time.Time `gorm:"column:deactivated_at;default:null" json:"deactivated_at"`
	// MarkedForDeletion / DeletionScheduledAt are reserved for a future
	// scheduled-purge flow; nothing acts on them today.
	MarkedForDeletion   bool       `gorm:"column:marked_for_deletion;not null;default:false" json:"marked_for_deletion"`
	DeletionScheduledAt *time.Time `gorm:"column:deletion_scheduled_at;default:null" json:"deletion_scheduled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "app_user"
}
