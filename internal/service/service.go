package service

import (
	"fmt"
	"time"

	"github.com/andresmejia/loantrack/internal/config"
	"github.com/andresmejia/loantrack/internal/models"
	"github.com/andresmejia/loantrack/internal/repository"
	"github.com/andresmejia/loantrack/internal/utils/email"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Service handles business logic
type Service struct {
	store  repository.Store
	mail   *email.Sender
	log    *logrus.Logger
	config *config.Config
}

// NewService initializes a new service. mail may be nil when notifications
// are not wanted.
func NewService(store repository.Store, mail *email.Sender, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{store: store, mail: mail, log: log, config: cfg}
}

// Register creates a new user with hashed password and optional PIN
func (s *Service) Register(fullName, email, phone, password, pin string) (*models.User, error) {
	if fullName == "" || email == "" {
		return nil, fmt.Errorf("full name and email are required")
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FullName:     fullName,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hashedPassword),
	}

	if pin != "" {
		hashedPin, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash pin: %w", err)
		}
		user.PinHash = string(hashedPin)
	}

	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.store.FindUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	// Generate JWT
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.store.TouchLastLogin(user.ID, time.Now()); err != nil {
		s.log.Warnf("Failed to record last login for %s: %v", user.Email, err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}
