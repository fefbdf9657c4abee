package domain

import "time"

// Rhyme is a catalog entry. Read-only from this service's perspective.
type Rhyme struct {
	ID              string
	Title           string
	GemCost         int
	IsPremium       bool
	DurationSeconds int
	IsActive        bool
	CreatedAt       time.Time
}
