package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrMissingUserID = errors.New("user ID is required")
)

// Context keys for error values
const (
	UserIDKey = "user_id"
	EventKey  = "event"
)
