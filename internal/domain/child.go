package domain

import "time"

// Child is a profile owned by exactly one user. The avatar fields are filled
// in by the avatar flow after a successful generation.
type Child struct {
	ID                string
	UserID            string
	Name              string
	AvatarURL         string
	AvatarCached      bool
	AvatarGeneratedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
