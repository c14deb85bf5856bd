package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolrun/bus-tracking/internal/core/domain"
	"github.com/schoolrun/bus-tracking/internal/core/ports"
)

// AuthService implements driver login.
type AuthService struct {
	drivers   ports.DriverRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(drivers ports.DriverRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{drivers: drivers, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Driver, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	driver, err := s.drivers.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if !driver.Active {
		return "", nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(driver.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(driver)
	if err != nil {
		return "", nil, err
	}

	return token, driver, nil
}

func (s *AuthService) generateToken(driver *domain.Driver) (string, error) {
	role := driver.Role
	if role == "" {
		role = domain.RoleDriver
	}
	claims := jwt.MapClaims{
		"driver_id": driver.ID,
		"name":      driver.Name,
		"role":      role,
		"exp":       time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
