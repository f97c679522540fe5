package models

import "time"

// AppointmentStatus is the closed set of appointment states.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// ParseAppointmentStatus validates a raw status string against the closed set.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch AppointmentStatus(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return AppointmentStatus(s), true
	default:
		return "", false
	}
}

// Appointment is a booking of a doctor by a patient for a calendar day and a
// time-slot label. Time slots are opaque labels: "10:00" and "10:15" are two
// distinct slots and never conflict with each other.
type Appointment struct {
	ID       string            `bson:"id" json:"id"`
	UserID   string            `bson:"userId" json:"userId"`
	DoctorID string            `bson:"doctorId" json:"doctorId"`
	FullName string            `bson:"fullName" json:"fullName"`
	Date     time.Time         `bson:"date" json:"date"`
	Time     string            `bson:"time" json:"time"`
	Reason   string            `bson:"reason" json:"reason"`
	Status   AppointmentStatus `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	// Resolved identities for display; not stored.
	Doctor *DoctorRef `bson:"-" json:"doctor,omitempty"`
	User   *UserRef   `bson:"-" json:"user,omitempty"`
}

// AppointmentUpdate carries a partial update: nil fields are left unchanged.
type AppointmentUpdate struct {
	FullName *string    `json:"fullName,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Time     *string    `json:"time,omitempty"`
	DoctorID *string    `json:"doctorId,omitempty"`
	Reason   *string    `json:"reason,omitempty"`
	Status   *string    `json:"status,omitempty"`
}
