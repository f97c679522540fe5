package user

import (
	userRepo "medibook/database/repository/user"
	"medibook/models"
)

// AuthResponse is returned on successful registration or login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// UserService defines business logic for account operations.
type UserService interface {
	// Register creates a new patient account and returns a signed token.
	Register(name, email, password string) (*AuthResponse, error)
	// Authenticate verifies credentials and returns a signed token.
	Authenticate(email, password string) (*AuthResponse, error)
	// GetByID retrieves a user by its unique ID.
	GetByID(userID string) (*models.User, error)
	// GetAll retrieves all users (admin listing; credential hashes excluded
	// from serialization by the model).
	GetAll() ([]models.User, error)
	// RevokeAuthToken invalidates the user's cached token (logout).
	RevokeAuthToken(userID string) error
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo userRepo.UserRepository
}
