package store

import (
	"errors"
	"fmt"
	"strings"

	"coinwatch/models"

	"gorm.io/gorm"
)

// UserStore provides access to the user registry. Accounts are created
// at signup and read at login and when resolving alert recipients; no
// update or delete path exists.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a new user store
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// CreateUser inserts a new user. A unique-constraint violation is
// surfaced as ErrDuplicateUsername or ErrDuplicateEmail and leaves no
// second row behind.
func (s *UserStore) CreateUser(username string, email *string, passwordHash string) (*models.User, error) {
	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if isUniqueViolation(err, "username") {
			return nil, ErrDuplicateUsername
		}
		if isUniqueViolation(err, "email") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// FindByUsername returns the stored user, or ErrNotFound.
func (s *UserStore) FindByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// ListRecipientEmails returns every non-null, non-empty email address.
func (s *UserStore) ListRecipientEmails() ([]string, error) {
	var emails []string
	err := s.db.Model(&models.User{}).
		Where("email IS NOT NULL AND email <> ''").
		Pluck("email", &emails).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recipient emails: %w", err)
	}
	return emails, nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure on the named users column.
func isUniqueViolation(err error, column string) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") &&
		strings.Contains(msg, "users."+column)
}
