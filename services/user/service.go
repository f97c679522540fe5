package user

import (
	"context"
	"strings"
	"time"

	"medibook/config"
	"medibook/models"
	"medibook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a new patient account. Registration can never mint an
// admin; admin accounts are provisioned out of band.
func (s *DefaultUserService) Register(name, email, password string) (*AuthResponse, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" {
		return nil, utils.InvalidArgumentError("name, email and password are required")
	}
	if !strings.Contains(email, "@") {
		return nil, utils.InvalidArgumentError("invalid email address")
	}
	if len(password) < 6 {
		return nil, utils.InvalidArgumentError("password must be at least 6 characters")
	}

	existing, err := s.Repo.GetByEmail(email)
	if err != nil {
		utils.GetLogger().Error("Register: failed to check for existing user", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, utils.ConflictError("a user with this email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		utils.GetLogger().Error("Register: failed to hash password", zap.Error(err))
		return nil, err
	}

	usr := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         models.RolePatient,
	}
	if err := s.Repo.Create(usr); err != nil {
		// A concurrent registration with the same email trips the unique
		// email index; surface that as the same conflict.
		return nil, utils.ConflictError("a user with this email already exists")
	}

	return s.issueToken(usr)
}

// Authenticate verifies credentials and returns a signed token.
func (s *DefaultUserService) Authenticate(email, password string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	usr, err := s.Repo.GetByEmail(email)
	if err != nil {
		utils.GetLogger().Error("Authenticate: failed to fetch user", zap.Error(err))
		return nil, err
	}
	if usr == nil {
		return nil, utils.UnauthenticatedError("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return nil, utils.UnauthenticatedError("invalid email or password")
	}

	return s.issueToken(usr)
}

// issueToken mints a JWT for the user and caches its hash so the auth
// middleware can validate without a database round trip and logout can
// revoke it.
func (s *DefaultUserService) issueToken(usr *models.User) (*AuthResponse, error) {
	token, err := utils.GenerateToken(usr.ID, string(usr.Role), config.TokenTTL())
	if err != nil {
		utils.GetLogger().Error("Failed to generate token", zap.String("userID", usr.ID), zap.Error(err))
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cacheKey := utils.AuthCachePrefix + usr.ID
	if err := utils.GetAuthCacheClient().Set(ctx, cacheKey, utils.HashToken(token), config.TokenTTL()).Err(); err != nil {
		// Cache failures degrade to DB-backed auth; do not fail the login.
		utils.GetLogger().Warn("Failed to cache auth token", zap.String("userID", usr.ID), zap.Error(err))
	}

	return &AuthResponse{Token: token, User: usr}, nil
}

// GetByID retrieves a user by its unique ID.
func (s *DefaultUserService) GetByID(userID string) (*models.User, error) {
	usr, err := s.Repo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if usr == nil {
		return nil, utils.NotFoundError("User not found")
	}
	return usr, nil
}

// GetAll retrieves all users.
func (s *DefaultUserService) GetAll() ([]models.User, error) {
	return s.Repo.GetAll()
}

// RevokeAuthToken drops the cached token hash for the user.
func (s *DefaultUserService) RevokeAuthToken(userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return utils.GetAuthCacheClient().Del(ctx, utils.AuthCachePrefix+userID).Err()
}
