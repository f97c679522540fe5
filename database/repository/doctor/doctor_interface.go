package doctorRepo

import "medibook/models"

// DoctorRepository defines methods for doctor directory data access.
type DoctorRepository interface {
	// GetByID retrieves a doctor by its unique ID. Returns nil if absent.
	GetByID(id string) (*models.Doctor, error)
	// GetByIDs retrieves all doctors whose IDs appear in the given set.
	GetByIDs(ids []string) ([]models.Doctor, error)
	// GetAll retrieves all doctors.
	GetAll() ([]models.Doctor, error)
	// Count counts all doctors.
	Count() (int64, error)
	// Create inserts a new doctor record.
	Create(doctor *models.Doctor) error
	// Delete removes a doctor record by its ID. Returns false if absent.
	Delete(id string) (bool, error)
}
