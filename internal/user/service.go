package user

import (
	"context"
	"errors"
	"strings"

	"github.com/Bu1gur/challenger-crm/internal/auth"
	"github.com/Bu1gur/challenger-crm/internal/logger"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("role must be admin or manager")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Refresh(ctx context.Context, refreshToken string) (string, *User, error)
	EnsureAdmin(ctx context.Context, name, email, password string) (bool, error)
}

type service struct {
	repo      Repository
	jwtSecret string
}

func NewService(repo Repository, jwtSecret string) Service {
	return &service{repo: repo, jwtSecret: jwtSecret}
}

// Register creates a staff account. Accounts default to the manager role.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	role := req.Role
	if role == "" {
		role = auth.RoleManager
	}
	if !auth.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, strings.TrimSpace(req.Name), email, hash, role)
	if err != nil {
		return nil, err
	}

	logger.Info("staff account created", "staff_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	pair, err := auth.GenerateTokens(u.ID, u.Email, u.Role, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, User: *u}, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	u, err := s.repo.FindByID(ctx, claims.StaffID)
	if err != nil {
		return "", nil, ErrUserNotFound
	}

	// role may have changed since the refresh token was issued
	access, err := auth.GenerateAccessToken(u.ID, u.Email, u.Role, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return access, u, nil
}

// EnsureAdmin creates the admin account unless the email is already taken.
// It reports whether an account was created.
func (s *service) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.Register(ctx, RegisterRequest{Name: name, Email: email, Password: password, Role: auth.RoleAdmin})
	if errors.Is(err, ErrEmailExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
