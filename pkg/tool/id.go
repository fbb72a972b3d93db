package tool

import "github.com/google/uuid"

// GenerateUUIDV7 returns a time-ordered UUID, used everywhere a new row
// identity is minted so index locality follows insertion order.
func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}
