package doctor

import (
	doctorRepo "medibook/database/repository/doctor"
	"medibook/models"
)

// DoctorService defines business logic for the doctor directory.
type DoctorService interface {
	// List retrieves all doctors. Public.
	List() ([]models.Doctor, error)
	// Add registers a new doctor. Experience must be non-negative.
	Add(name, specialty string, experience int, image string) (*models.Doctor, error)
	// Remove deletes a doctor by ID. Existing appointments referencing the
	// doctor are left untouched and keep a dangling reference.
	Remove(doctorID string) error
}

// DefaultDoctorService is the production implementation.
type DefaultDoctorService struct {
	Repo doctorRepo.DoctorRepository
}
