package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/errs"
	"storefront/internal/metrics"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

// ErrBadCreds is the one answer for every failed login.
var ErrBadCreds = errs.New(errs.CodeUnauthorized, "invalid email or password")

type RegisterForm struct {
	Name     string `form:"name" validate:"required,max=150"`
	Email    string `form:"email" validate:"required,email,max=255"`
	Password string `form:"password" validate:"required,password"`
}

type LoginForm struct {
	Email    string `form:"email" validate:"required,email,max=255"`
	Password string `form:"password" validate:"required,max=72"`
}

type AuthService struct {
	Users      *repos.UserRepo
	BcryptCost int
	Metrics    *metrics.Metrics
}

func NewAuthService(users *repos.UserRepo, cost int, m *metrics.Metrics) *AuthService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{Users: users, BcryptCost: cost, Metrics: m}
}

func (s *AuthService) Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		return "", errs.Wrap(errs.CodeValidation, err, "hash password")
	}
	return string(h), nil
}

// Register creates a USER account. Duplicate emails come back as a
// validation error on the email field.
func (s *AuthService) Register(ctx context.Context, f RegisterForm) (domain.User, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	if err := validate.Struct(f); err != nil {
		return domain.User{}, err
	}
	taken, err := s.Users.EmailExists(ctx, f.Email)
	if err != nil {
		return domain.User{}, err
	}
	if taken {
		return domain.User{}, repos.ErrEmailTaken
	}
	hash, err := s.Hash(f.Password)
	if err != nil {
		return domain.User{}, err
	}
	return s.Users.Create(ctx, domain.User{Name: f.Name, Email: f.Email, Hash: hash, Role: domain.RoleUser})
}

// Login checks f against the stored hash. Unknown emails and wrong passwords
// both return ErrBadCreds.
func (s *AuthService) Login(ctx context.Context, f LoginForm) (domain.User, error) {
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	if err := validate.Struct(f); err != nil {
		s.Metrics.Login(metrics.OutcomeFailed)
		return domain.User{}, ErrBadCreds
	}
	u, err := s.Users.ByEmail(ctx, f.Email)
	if errors.Is(err, errs.ErrNotFound) {
		s.Metrics.Login(metrics.OutcomeFailed)
		return domain.User{}, ErrBadCreds
	}
	if err != nil {
		return domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(f.Password)) != nil {
		s.Metrics.Login(metrics.OutcomeFailed)
		return domain.User{}, ErrBadCreds
	}
	s.Metrics.Login(metrics.OutcomeSuccess)
	return u, nil
}

// IsAdmin looks the role up fresh so a demotion takes effect immediately.
func (s *AuthService) IsAdmin(ctx context.Context, id domain.Identity) (bool, error) {
	u, err := s.Users.ByID(ctx, id.ID)
	if errors.Is(err, errs.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.Role == domain.RoleAdmin, nil
}
