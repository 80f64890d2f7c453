package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"servewise-backend/internal/repository"
	"servewise-backend/utilities"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService issues the JWTs the API middleware checks. Credentials are
// managed outside this service; tokens are minted by operators and then
// refreshed by clients.
type AuthService interface {
	IssueTokens(ctx context.Context, email string) (*TokenPair, error)
	Refresh(refreshToken string) (*TokenPair, error)
}

type authService struct {
	restaurants repository.RestaurantRepository
	log         *utilities.Logger
}

func NewAuthService(restaurants repository.RestaurantRepository, baseLog *utilities.Logger) AuthService {
	return &authService{restaurants: restaurants, log: baseLog.With("service", "AuthService")}
}

func (s *authService) IssueTokens(ctx context.Context, email string) (*TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrEmployeeNotFound)
	}
	employee, err := s.restaurants.ActiveEmployeeByEmail(ctx, nil, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("find employee: %w", err)
	}
	access, refresh, err := utilities.GenerateTokens(employee)
	if err != nil {
		return nil, fmt.Errorf("sign tokens: %w", err)
	}
	s.log.Info("tokens issued", "employee_id", employee.ID, "role", employee.Role)
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) Refresh(refreshToken string) (*TokenPair, error) {
	access, refresh, err := utilities.RefreshTokens(refreshToken)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
