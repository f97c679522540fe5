package models

import "time"

// ReminderPayload is the task body queued when a confirmed appointment should
// trigger a reminder notification.
type ReminderPayload struct {
	AppointmentID string    `json:"appointmentId"`
	UserID        string    `json:"userId"`
	DoctorName    string    `json:"doctorName"`
	Date          time.Time `json:"date"`
	Time          string    `json:"time"`
}
