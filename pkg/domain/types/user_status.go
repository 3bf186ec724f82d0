package types

import "fmt"

// UserStatus represents the presence status a user reports about themselves
type UserStatus string

const (
	UserStatusOnline  UserStatus = "online"
	UserStatusOffline UserStatus = "offline"
)

// AllUserStatuses returns all valid user statuses
func AllUserStatuses() []UserStatus {
	return []UserStatus{
		UserStatusOnline,
		UserStatusOffline,
	}
}

// IsValid checks if the user status is valid
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusOnline,
		UserStatusOffline:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as UserStatusOnline which is the store default.
func (s UserStatus) Normalize() UserStatus {
	if s == "" {
		return UserStatusOnline
	}
	return s
}

// String returns the string representation of the user status
func (s UserStatus) String() string {
	return string(s)
}

// ParseUserStatus parses a string into a UserStatus
func ParseUserStatus(s string) (UserStatus, error) {
	status := UserStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid user status: %s", s)
	}
	return status, nil
}
