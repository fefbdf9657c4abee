package domain

import "time"

// User represents a paying account. GemBalance is only ever mutated through
// UserStore.AdjustGemBalance; callers never write a decremented value back.
type User struct {
	ID         string
	Email      string
	GemBalance int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CanAfford reports whether the user's balance covers the given cost.
func (u User) CanAfford(cost int) bool {
	return u.GemBalance >= cost
}
