package userRepo

import "medibook/models"

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID. Returns nil if absent.
	GetByID(id string) (*models.User, error)
	// GetByEmail retrieves a user by its email address. Returns nil if absent.
	GetByEmail(email string) (*models.User, error)
	// GetByIDs retrieves all users whose IDs appear in the given set.
	GetByIDs(ids []string) ([]models.User, error)
	// GetAll retrieves all users.
	GetAll() ([]models.User, error)
	// GetByRole retrieves all users with the given role.
	GetByRole(role models.Role) ([]models.User, error)
	// CountByRole counts users with the given role.
	CountByRole(role models.Role) (int64, error)
	// Create inserts a new user record.
	Create(user *models.User) error
}
