package model

import (
	"time"

	"github.com/secmon-lab/vitalmap/pkg/domain/types"
)

// UserID is the client generated identifier of a user
type UserID string

func (id UserID) String() string {
	return string(id)
}

// User is a registry entry for a peer sharing its location and health data
type User struct {
	ID       UserID
	Name     string
	Email    string `masq:"secret"`
	Status   types.UserStatus
	Location *Location
	Bio      string
	LastSeen time.Time
}

// Copy returns a deep copy of the user
func (u *User) Copy() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Location = u.Location.Copy()
	return &c
}

// IsActive reports whether the user was seen strictly after since
func (u *User) IsActive(since time.Time) bool {
	return u.LastSeen.After(since)
}
