package model

import "time"

// PresenceEntry is one user in a presence broadcast
type PresenceEntry struct {
	Name       string          `json:"name"`
	Email      string          `json:"email" masq:"secret"`
	Status     string          `json:"status"`
	Location   *Location       `json:"location"`
	Bio        string          `json:"bio"`
	LastSeen   time.Time       `json:"lastSeen"`
	HealthData *HealthSnapshot `json:"healthData,omitempty"`
}

// Presence maps every active user to its profile and latest health snapshot.
// It is always sent whole, never as a delta.
type Presence map[UserID]*PresenceEntry

// NewPresence joins active users with their latest health samples
func NewPresence(users []*User, latest map[UserID]*HealthSample) Presence {
	p := make(Presence, len(users))
	for _, u := range users {
		entry := &PresenceEntry{
			Name:     u.Name,
			Email:    u.Email,
			Status:   u.Status.String(),
			Location: u.Location.Copy(),
			Bio:      u.Bio,
			LastSeen: u.LastSeen,
		}
		if s, ok := latest[u.ID]; ok {
			entry.HealthData = s.Snapshot()
		}
		p[u.ID] = entry
	}
	return p
}

// IDs returns the user ids in the presence in no particular order
func (p Presence) IDs() []UserID {
	ids := make([]UserID, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	return ids
}
