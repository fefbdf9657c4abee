package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrInsufficientGems = errors.New("insufficient gems")
	ErrContentRejected  = errors.New("content rejected")
	ErrProviderFailure  = errors.New("provider failure")
	ErrConfiguration    = errors.New("service not configured")
)
