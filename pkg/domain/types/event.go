package types

// EventName is the name of an event exchanged over the realtime channel
type EventName string

// Inbound events (peer to server)
const (
	EventUserJoined      EventName = "user-joined"
	EventUserConnected   EventName = "user-connected"
	EventLocationSharing EventName = "location-sharing"
	EventUpdateUser      EventName = "update-user"
	EventUserLeft        EventName = "user-left"
	EventUserLogout      EventName = "user-logout"
	EventDeleteAccount   EventName = "delete-account"
	EventHealthData      EventName = "health-data"
	EventWatchSync       EventName = "watch-sync"
)

// Outbound events (server to every peer)
const (
	EventUsersUpdate  EventName = "users-update"
	EventHealthUpdate EventName = "health-update"
	EventHealthAlert  EventName = "health-alert"
	EventWatchAlert   EventName = "watch-alert"
)

// IsInbound reports whether peers are allowed to send the event
func (e EventName) IsInbound() bool {
	switch e {
	case EventUserJoined,
		EventUserConnected,
		EventLocationSharing,
		EventUpdateUser,
		EventUserLeft,
		EventUserLogout,
		EventDeleteAccount,
		EventHealthData,
		EventWatchSync:
		return true
	default:
		return false
	}
}

// String returns the string representation of the event name
func (e EventName) String() string {
	return string(e)
}
