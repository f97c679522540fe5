package notification

import "time"

// Event kinds delivered over the real-time channel.
const (
	EventNewAppointment = "newAppointment"
	EventStatusUpdate   = "appointmentStatusUpdate"
	EventNewMessage     = "newMessage"
	EventReminder       = "appointmentReminder"
)

// Event is a real-time notification pushed to connected clients. Data carries
// the entity the event is about; Message is human-readable.
type Event struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Publisher delivers events to currently-connected clients. Delivery is
// fire-and-forget: no acknowledgment, no retry, no persistence. A recipient
// who is not connected simply misses the event; the underlying entity
// mutation is already committed before any publish is attempted.
type Publisher interface {
	// PublishToUser delivers the event to every connection authenticated as
	// the given user.
	PublishToUser(userID string, event Event)
	// PublishToAdmins delivers the event to every connected admin session.
	PublishToAdmins(event Event)
}
