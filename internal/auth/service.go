package auth

import (
	"errors"
	"os"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Service authenticates the restaurant operator. There is a single admin
// account configured by environment; no user table.
type Service struct {
	username     string
	passwordHash string
}

func NewService() *Service {
	return &Service{
		username:     os.Getenv("ADMIN_USERNAME"),
		passwordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}
}

func (s *Service) Login(username, password string) (string, error) {
	if s.username == "" || s.passwordHash == "" {
		return "", errors.New("admin credentials not configured")
	}
	if username != s.username {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return GenerateToken(username, "admin")
}
