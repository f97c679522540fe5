package doctor

import (
	"strings"

	"medibook/models"
	"medibook/utils"

	"github.com/google/uuid"
)

// List retrieves all doctors.
func (s *DefaultDoctorService) List() ([]models.Doctor, error) {
	return s.Repo.GetAll()
}

// Add registers a new doctor, available for booking by default.
func (s *DefaultDoctorService) Add(name, specialty string, experience int, image string) (*models.Doctor, error) {
	name = strings.TrimSpace(name)
	specialty = strings.TrimSpace(specialty)

	if name == "" || specialty == "" {
		return nil, utils.InvalidArgumentError("name and specialty are required")
	}
	if experience < 0 {
		return nil, utils.InvalidArgumentError("experience must be zero or greater")
	}
	if image == "" {
		image = models.DefaultDoctorImage
	}

	doc := &models.Doctor{
		ID:         uuid.New().String(),
		Name:       name,
		Specialty:  specialty,
		Experience: experience,
		Image:      image,
		Available:  true,
	}
	if err := s.Repo.Create(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Remove deletes a doctor by ID.
func (s *DefaultDoctorService) Remove(doctorID string) error {
	deleted, err := s.Repo.Delete(doctorID)
	if err != nil {
		return err
	}
	if !deleted {
		return utils.NotFoundError("Doctor not found")
	}
	return nil
}
