package appointmentRepo

import (
	"time"

	"medibook/models"

	"go.mongodb.org/mongo-driver/bson"
)

// AppointmentRepository defines methods for appointment data access.
type AppointmentRepository interface {
	// GetByID retrieves an appointment by its unique ID. Returns nil if absent.
	GetByID(id string) (*models.Appointment, error)
	// GetByUser retrieves all appointments owned by the given user,
	// ordered by date then time-slot label, both ascending.
	GetByUser(userID string) ([]models.Appointment, error)
	// GetAll retrieves all appointments in the same ordering.
	GetAll() ([]models.Appointment, error)
	// FindActive retrieves a pending or confirmed appointment for the given
	// doctor, date and time-slot label. Returns nil if none exists.
	FindActive(doctorID string, date time.Time, timeLabel string) (*models.Appointment, error)
	// Create inserts a new appointment record. A pending/confirmed appointment
	// for the same (doctor, date, time) makes the insert fail with a
	// duplicate-key error; detect it with IsConflict.
	Create(appointment *models.Appointment) error
	// Update applies a $set-style partial update. Returns false if absent.
	Update(id string, set bson.M) (bool, error)
	// Delete removes an appointment record by its ID. Returns false if absent.
	Delete(id string) (bool, error)
	// Count counts appointments matching the filter; pass nil for all.
	Count(filter bson.M) (int64, error)
}
