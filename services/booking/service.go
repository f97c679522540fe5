package booking

import (
	"fmt"
	"time"

	appointmentRepo "medibook/database/repository/appointment"
	"medibook/models"
	"medibook/services/notification"
	"medibook/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// NormalizeDate truncates a date to its calendar day in UTC so that equal
// days always compare and index identically regardless of the wall clock in
// the request.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ListForUser retrieves the requester's own appointments.
func (s *DefaultBookingService) ListForUser(userID string) ([]models.Appointment, error) {
	appointments, err := s.Repo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	s.resolveDoctors(appointments)
	return appointments, nil
}

// ListAll retrieves every appointment with owner and doctor identity resolved.
func (s *DefaultBookingService) ListAll() ([]models.Appointment, error) {
	appointments, err := s.Repo.GetAll()
	if err != nil {
		return nil, err
	}
	s.resolveDoctors(appointments)
	s.resolveUsers(appointments)
	return appointments, nil
}

// Create validates and books a new appointment.
func (s *DefaultBookingService) Create(userID string, input CreateAppointmentInput) (*models.Appointment, error) {
	doc, err := s.DoctorRepo.GetByID(input.DoctorID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, utils.NotFoundError("Doctor not found")
	}
	if !doc.Available {
		return nil, utils.UnavailableError("Doctor is not available")
	}

	date := NormalizeDate(input.Date)
	now := s.now()
	if date.Year() != now.Year() || date.Month() != now.Month() {
		return nil, utils.OutOfWindowError("Appointments can only be booked for the current month")
	}

	// Fast-path conflict check for a friendly message; the partial unique
	// index below remains the authority under concurrency.
	existing, err := s.Repo.FindActive(input.DoctorID, date, input.Time)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.ConflictError("Doctor already has an appointment at this time")
	}

	appt := &models.Appointment{
		ID:       uuid.New().String(),
		UserID:   userID,
		DoctorID: input.DoctorID,
		FullName: input.FullName,
		Date:     date,
		Time:     input.Time,
		Reason:   input.Reason,
		Status:   models.StatusPending,
	}
	if err := s.Repo.Create(appt); err != nil {
		if appointmentRepo.IsConflict(err) {
			return nil, utils.ConflictError("Doctor already has an appointment at this time")
		}
		utils.GetLogger().Error("Create: failed to persist appointment", zap.Error(err))
		return nil, err
	}

	appt.Doctor = doc.Ref()

	s.Publisher.PublishToAdmins(notification.Event{
		Type:    notification.EventNewAppointment,
		Message: fmt.Sprintf("New appointment request from %s", appt.FullName),
		Data:    appt,
	})

	return appt, nil
}

// Update applies a partial update to an appointment.
//
// A doctor change re-validates only that the new doctor exists and is
// available; the slot conflict check is not re-run on update, matching the
// long-standing behavior callers depend on.
func (s *DefaultBookingService) Update(requesterID string, requesterRole models.Role, appointmentID string, update models.AppointmentUpdate) (*models.Appointment, error) {
	appt, err := s.Repo.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, utils.NotFoundError("Appointment not found")
	}
	if err := authorize(requesterID, requesterRole, appt); err != nil {
		return nil, err
	}

	set := bson.M{}

	if update.DoctorID != nil && *update.DoctorID != appt.DoctorID {
		doc, err := s.DoctorRepo.GetByID(*update.DoctorID)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, utils.NotFoundError("Doctor not found")
		}
		if !doc.Available {
			return nil, utils.UnavailableError("Doctor is not available")
		}
		appt.DoctorID = *update.DoctorID
		set["doctorId"] = appt.DoctorID
	}
	if update.FullName != nil {
		appt.FullName = *update.FullName
		set["fullName"] = appt.FullName
	}
	if update.Date != nil {
		appt.Date = NormalizeDate(*update.Date)
		set["date"] = appt.Date
	}
	if update.Time != nil {
		appt.Time = *update.Time
		set["time"] = appt.Time
	}
	if update.Reason != nil {
		appt.Reason = *update.Reason
		set["reason"] = appt.Reason
	}

	// Only an admin may transition status; a patient-supplied status field is
	// ignored and the appointment keeps its current status.
	statusChanged := false
	if update.Status != nil && requesterRole == models.RoleAdmin {
		status, ok := models.ParseAppointmentStatus(*update.Status)
		if !ok {
			return nil, utils.InvalidArgumentError("invalid appointment status")
		}
		if status != appt.Status {
			appt.Status = status
			set["status"] = appt.Status
			statusChanged = true
		}
	}

	if len(set) > 0 {
		matched, err := s.Repo.Update(appointmentID, set)
		if err != nil {
			return nil, err
		}
		if !matched {
			return nil, utils.NotFoundError("Appointment not found")
		}
	}

	if statusChanged {
		s.Publisher.PublishToUser(appt.UserID, notification.Event{
			Type:    notification.EventStatusUpdate,
			Message: fmt.Sprintf("Your appointment status has been updated to %s", appt.Status),
			Data:    appt,
		})
		if appt.Status == models.StatusConfirmed {
			s.scheduleReminder(appt)
		}
	}

	s.resolveDoctor(appt)
	return appt, nil
}

// UpdateStatus is the admin status-transition path.
func (s *DefaultBookingService) UpdateStatus(adminID, appointmentID, status string) (*models.Appointment, error) {
	return s.Update(adminID, models.RoleAdmin, appointmentID, models.AppointmentUpdate{Status: &status})
}

// Delete removes an appointment.
func (s *DefaultBookingService) Delete(requesterID string, requesterRole models.Role, appointmentID string) error {
	appt, err := s.Repo.GetByID(appointmentID)
	if err != nil {
		return err
	}
	if appt == nil {
		return utils.NotFoundError("Appointment not found")
	}
	if err := authorize(requesterID, requesterRole, appt); err != nil {
		return err
	}

	deleted, err := s.Repo.Delete(appointmentID)
	if err != nil {
		return err
	}
	if !deleted {
		return utils.NotFoundError("Appointment not found")
	}
	return nil
}

// Stats returns the aggregate counts for the admin dashboard.
func (s *DefaultBookingService) Stats() (*models.AdminStats, error) {
	patients, err := s.UserRepo.CountByRole(models.RolePatient)
	if err != nil {
		return nil, err
	}
	doctors, err := s.DoctorRepo.Count()
	if err != nil {
		return nil, err
	}
	total, err := s.Repo.Count(nil)
	if err != nil {
		return nil, err
	}
	pending, err := s.Repo.Count(bson.M{"status": models.StatusPending})
	if err != nil {
		return nil, err
	}

	return &models.AdminStats{
		TotalUsers:          patients,
		TotalDoctors:        doctors,
		TotalAppointments:   total,
		PendingAppointments: pending,
	}, nil
}

// authorize allows the owning user and any admin; everyone else is rejected.
func authorize(requesterID string, requesterRole models.Role, appt *models.Appointment) error {
	switch requesterRole {
	case models.RoleAdmin:
		return nil
	case models.RolePatient:
		if appt.UserID == requesterID {
			return nil
		}
		return utils.ForbiddenError("Not authorized")
	default:
		return utils.ForbiddenError("Not authorized")
	}
}

// scheduleReminder queues a reminder for the start of the appointment day.
// The time-slot label is an opaque string, so the day is the finest
// granularity available for scheduling.
func (s *DefaultBookingService) scheduleReminder(appt *models.Appointment) {
	if s.Reminders == nil || !appt.Date.After(s.now()) {
		return
	}

	doctorName := ""
	if doc, err := s.DoctorRepo.GetByID(appt.DoctorID); err == nil && doc != nil {
		doctorName = doc.Name
	}

	payload := models.ReminderPayload{
		AppointmentID: appt.ID,
		UserID:        appt.UserID,
		DoctorName:    doctorName,
		Date:          appt.Date,
		Time:          appt.Time,
	}
	if err := s.Reminders.ScheduleReminder(payload, appt.Date); err != nil {
		// Reminders are best effort; the confirmation itself already succeeded.
		utils.GetLogger().Warn("Failed to schedule appointment reminder",
			zap.String("appointmentID", appt.ID), zap.Error(err))
	}
}

// resolveDoctor attaches doctor identity to one appointment; the reference is
// left nil when the doctor no longer exists.
func (s *DefaultBookingService) resolveDoctor(appt *models.Appointment) {
	doc, err := s.DoctorRepo.GetByID(appt.DoctorID)
	if err != nil || doc == nil {
		return
	}
	appt.Doctor = doc.Ref()
}

// resolveDoctors attaches doctor identity to each appointment. Appointments
// referencing a removed doctor keep a nil reference rather than failing.
func (s *DefaultBookingService) resolveDoctors(appointments []models.Appointment) {
	if len(appointments) == 0 {
		return
	}

	ids := make([]string, 0, len(appointments))
	seen := make(map[string]struct{}, len(appointments))
	for i := range appointments {
		if _, ok := seen[appointments[i].DoctorID]; !ok {
			seen[appointments[i].DoctorID] = struct{}{}
			ids = append(ids, appointments[i].DoctorID)
		}
	}

	doctors, err := s.DoctorRepo.GetByIDs(ids)
	if err != nil {
		utils.GetLogger().Warn("Failed to resolve appointment doctors", zap.Error(err))
		return
	}
	refs := make(map[string]*models.DoctorRef, len(doctors))
	for i := range doctors {
		refs[doctors[i].ID] = doctors[i].Ref()
	}

	for i := range appointments {
		appointments[i].Doctor = refs[appointments[i].DoctorID]
	}
}

// resolveUsers attaches owner identity to each appointment.
func (s *DefaultBookingService) resolveUsers(appointments []models.Appointment) {
	if len(appointments) == 0 {
		return
	}

	ids := make([]string, 0, len(appointments))
	seen := make(map[string]struct{}, len(appointments))
	for i := range appointments {
		if _, ok := seen[appointments[i].UserID]; !ok {
			seen[appointments[i].UserID] = struct{}{}
			ids = append(ids, appointments[i].UserID)
		}
	}

	users, err := s.UserRepo.GetByIDs(ids)
	if err != nil {
		utils.GetLogger().Warn("Failed to resolve appointment owners", zap.Error(err))
		return
	}
	refs := make(map[string]*models.UserRef, len(users))
	for i := range users {
		refs[users[i].ID] = users[i].Ref()
	}

	for i := range appointments {
		appointments[i].User = refs[appointments[i].UserID]
	}
}
