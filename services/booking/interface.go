package booking

import (
	"time"

	appointmentRepo "medibook/database/repository/appointment"
	doctorRepo "medibook/database/repository/doctor"
	userRepo "medibook/database/repository/user"
	"medibook/models"
	"medibook/services/notification"
	"medibook/services/tasks"
)

// CreateAppointmentInput carries a booking request.
type CreateAppointmentInput struct {
	DoctorID string
	FullName string
	Date     time.Time
	Time     string
	Reason   string
}

// BookingService defines business logic for appointment management.
type BookingService interface {
	// ListForUser retrieves the appointments owned by userID, ordered by
	// date then time-slot label.
	ListForUser(userID string) ([]models.Appointment, error)
	// ListAll retrieves every appointment with owner and doctor identity
	// resolved. Admin only; enforced at the transport layer.
	ListAll() ([]models.Appointment, error)
	// Create validates and books a new appointment with status pending,
	// then notifies connected admins.
	Create(userID string, input CreateAppointmentInput) (*models.Appointment, error)
	// Update applies a partial update. Only the owner or an admin may
	// update; only an admin may change status. A status change notifies the
	// owning user.
	Update(requesterID string, requesterRole models.Role, appointmentID string, update models.AppointmentUpdate) (*models.Appointment, error)
	// UpdateStatus is the admin status-transition path.
	UpdateStatus(adminID, appointmentID, status string) (*models.Appointment, error)
	// Delete removes an appointment. Only the owner or an admin may delete.
	Delete(requesterID string, requesterRole models.Role, appointmentID string) error
	// Stats returns the aggregate counts for the admin dashboard.
	Stats() (*models.AdminStats, error)
}

// DefaultBookingService is the production implementation.
type DefaultBookingService struct {
	Repo       appointmentRepo.AppointmentRepository
	DoctorRepo doctorRepo.DoctorRepository
	UserRepo   userRepo.UserRepository
	Publisher  notification.Publisher
	Reminders  tasks.ReminderScheduler

	// Now is the clock used for the booking-window check; defaults to time.Now.
	Now func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
