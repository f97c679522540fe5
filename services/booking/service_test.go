package booking

import (
	"errors"
	"testing"
	"time"

	"medibook/models"
	"medibook/services/notification"
	"medibook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// -- Mock repositories --

type mockAppointmentRepo struct {
	appointments map[string]*models.Appointment
	createErr    error
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appointments: make(map[string]*models.Appointment)}
}

func (m *mockAppointmentRepo) GetByID(id string) (*models.Appointment, error) {
	if a, ok := m.appointments[id]; ok {
		copy := *a
		return &copy, nil
	}
	return nil, nil
}

func (m *mockAppointmentRepo) GetByUser(userID string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range m.appointments {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAppointmentRepo) GetAll() ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range m.appointments {
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockAppointmentRepo) FindActive(doctorID string, date time.Time, timeLabel string) (*models.Appointment, error) {
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && a.Date.Equal(date) && a.Time == timeLabel &&
			(a.Status == models.StatusPending || a.Status == models.StatusConfirmed) {
			copy := *a
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *mockAppointmentRepo) Create(a *models.Appointment) error {
	if m.createErr != nil {
		return m.createErr
	}
	copy := *a
	m.appointments[a.ID] = &copy
	return nil
}

func (m *mockAppointmentRepo) Update(id string, set bson.M) (bool, error) {
	a, ok := m.appointments[id]
	if !ok {
		return false, nil
	}
	if v, ok := set["status"]; ok {
		a.Status = v.(models.AppointmentStatus)
	}
	if v, ok := set["fullName"]; ok {
		a.FullName = v.(string)
	}
	if v, ok := set["time"]; ok {
		a.Time = v.(string)
	}
	if v, ok := set["date"]; ok {
		a.Date = v.(time.Time)
	}
	if v, ok := set["reason"]; ok {
		a.Reason = v.(string)
	}
	if v, ok := set["doctorId"]; ok {
		a.DoctorID = v.(string)
	}
	return true, nil
}

func (m *mockAppointmentRepo) Delete(id string) (bool, error) {
	if _, ok := m.appointments[id]; !ok {
		return false, nil
	}
	delete(m.appointments, id)
	return true, nil
}

func (m *mockAppointmentRepo) Count(filter bson.M) (int64, error) {
	if filter == nil {
		return int64(len(m.appointments)), nil
	}
	status, ok := filter["status"].(models.AppointmentStatus)
	if !ok {
		return 0, errors.New("unexpected filter")
	}
	var n int64
	for _, a := range m.appointments {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

type mockDoctorRepo struct {
	doctors map[string]*models.Doctor
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[string]*models.Doctor)}
}

func (m *mockDoctorRepo) GetByID(id string) (*models.Doctor, error) {
	if d, ok := m.doctors[id]; ok {
		copy := *d
		return &copy, nil
	}
	return nil, nil
}

func (m *mockDoctorRepo) GetByIDs(ids []string) ([]models.Doctor, error) {
	var out []models.Doctor
	for _, id := range ids {
		if d, ok := m.doctors[id]; ok {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *mockDoctorRepo) GetAll() ([]models.Doctor, error) {
	var out []models.Doctor
	for _, d := range m.doctors {
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockDoctorRepo) Count() (int64, error) { return int64(len(m.doctors)), nil }

func (m *mockDoctorRepo) Create(d *models.Doctor) error {
	copy := *d
	m.doctors[d.ID] = &copy
	return nil
}

func (m *mockDoctorRepo) Delete(id string) (bool, error) {
	if _, ok := m.doctors[id]; !ok {
		return false, nil
	}
	delete(m.doctors, id)
	return true, nil
}

type mockUserRepo struct {
	users map[string]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*models.User)}
}

func (m *mockUserRepo) GetByID(id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByIDs(ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) GetAll() ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepo) GetByRole(role models.Role) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) CountByRole(role models.Role) (int64, error) {
	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *mockUserRepo) Create(u *models.User) error {
	copy := *u
	m.users[u.ID] = &copy
	return nil
}

// mockPublisher records published events.
type mockPublisher struct {
	userEvents  map[string][]notification.Event
	adminEvents []notification.Event
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{userEvents: make(map[string][]notification.Event)}
}

func (m *mockPublisher) PublishToUser(userID string, event notification.Event) {
	m.userEvents[userID] = append(m.userEvents[userID], event)
}

func (m *mockPublisher) PublishToAdmins(event notification.Event) {
	m.adminEvents = append(m.adminEvents, event)
}

// mockScheduler records scheduled reminders.
type mockScheduler struct {
	payloads []models.ReminderPayload
}

func (m *mockScheduler) ScheduleReminder(p models.ReminderPayload, _ time.Time) error {
	m.payloads = append(m.payloads, p)
	return nil
}

// -- Fixtures --

var testNow = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

func newTestService() (*DefaultBookingService, *mockAppointmentRepo, *mockDoctorRepo, *mockUserRepo, *mockPublisher, *mockScheduler) {
	appts := newMockAppointmentRepo()
	doctors := newMockDoctorRepo()
	users := newMockUserRepo()
	pub := newMockPublisher()
	sched := &mockScheduler{}

	svc := &DefaultBookingService{
		Repo:       appts,
		DoctorRepo: doctors,
		UserRepo:   users,
		Publisher:  pub,
		Reminders:  sched,
		Now:        func() time.Time { return testNow },
	}
	return svc, appts, doctors, users, pub, sched
}

func addDoctor(doctors *mockDoctorRepo, id string, available bool) {
	doctors.doctors[id] = &models.Doctor{
		ID: id, Name: "Dr. " + id, Specialty: "cardiology", Experience: 5, Available: available,
	}
}

func validInput(doctorID string) CreateAppointmentInput {
	return CreateAppointmentInput{
		DoctorID: doctorID,
		FullName: "Pat Example",
		Date:     time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		Time:     "10:00",
		Reason:   "checkup",
	}
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var svcErr *utils.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	return svcErr.Code
}

// -- Create --

func TestCreateAppointment(t *testing.T) {
	svc, _, doctors, _, pub, _ := newTestService()
	addDoctor(doctors, "doc-1", true)

	appt, err := svc.Create("patient-1", validInput("doc-1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if appt.Status != models.StatusPending {
		t.Errorf("expected pending status, got %s", appt.Status)
	}
	if appt.Doctor == nil || appt.Doctor.ID != "doc-1" {
		t.Errorf("expected resolved doctor reference, got %+v", appt.Doctor)
	}
	if len(pub.adminEvents) != 1 || pub.adminEvents[0].Type != notification.EventNewAppointment {
		t.Errorf("expected one newAppointment event to admins, got %+v", pub.adminEvents)
	}
}

func TestCreateUnknownDoctor(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()

	_, err := svc.Create("patient-1", validInput("missing"))
	if code := errCode(t, err); code != utils.CodeNotFound {
		t.Errorf("expected notFound, got %s", code)
	}
}

func TestCreateUnavailableDoctor(t *testing.T) {
	svc, _, doctors, _, _, _ := newTestService()
	addDoctor(doctors, "doc-1", false)

	_, err := svc.Create("patient-1", validInput("doc-1"))
	if code := errCode(t, err); code != utils.CodeUnavailable {
		t.Errorf("expected unavailable, got %s", code)
	}
}

func TestCreateOutsideCurrentMonth(t *testing.T) {
	svc, _, doctors, _, _, _ := newTestService()
	addDoctor(doctors, "doc-1", true)

	cases := []time.Time{
		time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC), // same month, wrong year
	}
	for _, date := range cases {
		input := validInput("doc-1")
		input.Date = date
		_, err := svc.Create("patient-1", input)
		if code := errCode(t, err); code != utils.CodeOutOfWindow {
			t.Errorf("date %v: expected outOfWindow, got %s", date, code)
		}
	}
}

func TestCreateConflict(t *testing.T) {
	svc, _, doctors, _, _, _ := newTestService()
	addDoctor(doctors, "doc-1", true)

	if _, err := svc.Create("patient-1", validInput("doc-1")); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := svc.Create("patient-2", validInput("doc-1"))
	if code := errCode(t, err); code != utils.CodeConflict {
		t.Errorf("expected conflict, got %s", code)
	}

	// A different slot label never conflicts, even a clinically overlapping one.
	input := validInput("doc-1")
	input.Time = "10:15"
	if _, err := svc.Create("patient-2", input); err != nil {
		t.Errorf("distinct time label should not conflict: %v", err)
	}
}

func TestCreateAfterCancellation(t *testing.T) {
	svc, appts, doctors, _, _, _ := newTestService()
	addDoctor(doctors, "doc-1", true)

	first, err := svc.Create("patient-1", validInput("doc-1"))
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	appts.appointments[first.ID].Status = models.StatusCancelled

	if _, err := svc.Create("patient-2", validInput("doc-1")); err != nil {
		t.Errorf("cancelled appointment should not conflict: %v", err)
	}
}

func TestCreateStorageLevelConflict(t *testing.T) {
	svc, appts, doctors, _, _, _ := newTestService()
	addDoctor(doctors, "doc-1", true)

	// Simulate the race where two concurrent creates both pass the pre-check:
	// the unique index rejects the second insert with a duplicate-key error.
	appts.createErr = mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}

	_, err := svc.Create("patient-1", validInput("doc-1"))
	if code := errCode(t, err); code != utils.CodeConflict {
		t.Errorf("expected conflict from duplicate-key error, got %s", code)
	}
}

// -- Update --

func TestUpdateAuthorization(t *testing.T) {
	svc, _, doctors, _, _, _ := newTestService()
	addDoctor(doctors, "doc-1", true)

	appt, err := svc.Create("patient-1", validInput("doc-1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	reason := "updated reason"
	update := models.AppointmentUpdate{Reason: &reason}

	if _, err := svc.Update("patient-2", models.RolePatient, appt.ID, update); err == nil {
		t.Error("expected Forbidden for non-owner patient")
	} else if code := errCode(t, err); code != utils.CodeForbidden {
		t.Errorf("expected forbidden, got %s", code)
	}

	if _, err := svc.Update("patient-1", models.RolePatient, appt.ID, update); err != nil {
		t.Errorf("owner update failed: %v", err)
	}
	if _, err := svc.Update("admin-1", models.RoleAdmin, appt.ID, update); err != nil {
		t.Errorf("admin update failed: %v", err)
	}
}

func TestUpdateMissingAppointment(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()

	reason := "x"
	_, err := svc.Update("patient-1", models.RolePatient, "missing", models.AppointmentUpdate{Reason: &reason})
	if code := errCode(t, err); code != utils.CodeNotFound {
		t.Errorf("expected notFound, got %s", code)
	}
}

func TestPatientCannotChangeStatus(t *testing.T) {
	svc, appts, doctors, _, pub, _ := newTestService()
	addDoctor(doctors, "doc-1", true)

	appt, err := svc.Create("patient-1", validInput("doc-1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	status := "confirmed"
	updated, err := svc.Update("patient-1", models.RolePatient, appt.ID, models.AppointmentUpdate{Status: &status})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != models.StatusPending {
		t.Errorf("patient-issued status change should be ignored, got %s", updated.Status)
	}
	if appts.appointments[appt.ID].Status != models.StatusPending {
		t.Errorf("stored status changed by patient update")
	}
	if len(pub.userEvents["patient-1"]) != 0 {
		t.Errorf("no status notification expected, got %+v", pub.userEvents["patient-1"])
	}
}

func TestAdminStatusChangeNotifiesOwner(t *testing.T) {
	svc, _, doctors, _, pub, sched := newTestService()
	addDoctor(doctors, "doc-1", true)

	appt, err := svc.Create("patient-1", validInput("doc-1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := svc.UpdateStatus("admin-1", appt.ID, "confirmed")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != models.StatusConfirmed {
		t.Errorf("expected confirmed, got %s", updated.Status)
	}

	events := pub.userEvents["patient-1"]
	if len(events) != 1 || events[0].Type != notification.EventStatusUpdate {
		t.Fatalf("expected one appointmentStatusUpdate event, got %+v", events)
	}
	if want := "Your appointment status has been updated to confirmed"; events[0].Message != want {
		t.Errorf("unexpected message %q", events[0].Message)
	}
	if len(sched.payloads) != 1 || sched.payloads[0].AppointmentID != appt.ID {
		t.Errorf("expected one reminder scheduled for the confirmed appointment, got %+v", sched.payloads)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc, _, doctors, _, _, _ := newTestService()
	addDoctor(doctors, "doc-1", true)

	appt, err := svc.Create("patient-1", validInput("doc-1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.UpdateStatus("admin-1", appt.ID, "approved")
	if code := errCode(t, err); code != utils.CodeInvalidArgument {
		t.Errorf("expected invalidArgument, got %s", code)
	}
}

func TestUpdateDoctorRevalidates(t *testing.T) {
	svc, _, doctors, _, _, _ := newTestService()
	addDoctor(doctors, "doc-1", true)
	addDoctor(doctors, "doc-2", false)

	appt, err := svc.Create("patient-1", validInput("doc-1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	unavailable := "doc-2"
	if _, err := svc.Update("patient-1", models.RolePatient, appt.ID, models.AppointmentUpdate{DoctorID: &unavailable}); err == nil {
		t.Error("expected Unavailable for unavailable doctor")
	} else if code := errCode(t, err); code != utils.CodeUnavailable {
		t.Errorf("expected unavailable, got %s", code)
	}

	missing := "doc-9"
	if _, err := svc.Update("patient-1", models.RolePatient, appt.ID, models.AppointmentUpdate{DoctorID: &missing}); err == nil {
		t.Error("expected NotFound for unknown doctor")
	} else if code := errCode(t, err); code != utils.CodeNotFound {
		t.Errorf("expected notFound, got %s", code)
	}
}

func TestUpdateAppliesOnlyPresentFields(t *testing.T) {
	svc, appts, doctors, _, _, _ := newTestService()
	addDoctor(doctors, "doc-1", true)

	appt, err := svc.Create("patient-1", validInput("doc-1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newTime := "14:00"
	updated, err := svc.Update("patient-1", models.RolePatient, appt.ID, models.AppointmentUpdate{Time: &newTime})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Time != "14:00" {
		t.Errorf("expected time updated, got %s", updated.Time)
	}
	stored := appts.appointments[appt.ID]
	if stored.FullName != "Pat Example" || stored.Reason != "checkup" {
		t.Errorf("absent fields must be left unchanged, got %+v", stored)
	}
}

// -- Delete --

func TestDelete(t *testing.T) {
	svc, _, doctors, _, _, _ := newTestService()
	addDoctor(doctors, "doc-1", true)

	appt, err := svc.Create("patient-1", validInput("doc-1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete("patient-2", models.RolePatient, appt.ID); err == nil {
		t.Error("expected Forbidden for non-owner delete")
	}
	if err := svc.Delete("patient-1", models.RolePatient, appt.ID); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
	if err := svc.Delete("patient-1", models.RolePatient, appt.ID); err == nil {
		t.Error("expected NotFound for second delete")
	}
}

// -- ListAll / Stats --

func TestListAllSurvivesDanglingDoctor(t *testing.T) {
	svc, _, doctors, users, _, _ := newTestService()
	addDoctor(doctors, "doc-1", true)
	users.users["patient-1"] = &models.User{ID: "patient-1", Name: "Pat", Role: models.RolePatient}

	input := validInput("doc-1")
	if _, err := svc.Create("patient-1", input); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	input.Time = "11:00"
	if _, err := svc.Create("patient-1", input); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Admin removes the doctor; the two appointments keep a dangling reference.
	delete(doctors.doctors, "doc-1")

	all, err := svc.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(all))
	}
	for _, a := range all {
		if a.Doctor != nil {
			t.Errorf("expected unresolved doctor reference, got %+v", a.Doctor)
		}
		if a.User == nil || a.User.ID != "patient-1" {
			t.Errorf("expected resolved owner, got %+v", a.User)
		}
	}
}

func TestStats(t *testing.T) {
	svc, _, doctors, users, _, _ := newTestService()
	addDoctor(doctors, "doc-1", true)
	addDoctor(doctors, "doc-2", true)
	users.users["p1"] = &models.User{ID: "p1", Role: models.RolePatient}
	users.users["p2"] = &models.User{ID: "p2", Role: models.RolePatient}
	users.users["a1"] = &models.User{ID: "a1", Role: models.RoleAdmin}

	first, err := svc.Create("p1", validInput("doc-1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create("p2", validInput("doc-2")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.UpdateStatus("a1", first.ID, "confirmed"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalUsers != 2 {
		t.Errorf("expected 2 patients, got %d", stats.TotalUsers)
	}
	if stats.TotalDoctors != 2 {
		t.Errorf("expected 2 doctors, got %d", stats.TotalDoctors)
	}
	if stats.TotalAppointments != 2 {
		t.Errorf("expected 2 appointments, got %d", stats.TotalAppointments)
	}
	if stats.PendingAppointments != 1 {
		t.Errorf("expected 1 pending appointment, got %d", stats.PendingAppointments)
	}
}

func TestNormalizeDate(t *testing.T) {
	in := time.Date(2025, time.June, 15, 18, 30, 12, 0, time.FixedZone("X", 3*3600))
	got := NormalizeDate(in)
	want := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NormalizeDate(%v) = %v, want %v", in, got, want)
	}
}
