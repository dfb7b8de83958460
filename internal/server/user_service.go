package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/proofdin/proofdin/internal/config"
	"github.com/proofdin/proofdin/internal/db"
	"github.com/proofdin/proofdin/internal/types"
)

// UserStore is the user persistence used by UserService. Getters return nil, nil for
// unknown users.
type UserStore interface {
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, name, email, passwordHash string) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
}

// UserService provides business logic for user authentication operations
type UserService struct {
	store UserStore
	auth  config.AuthConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(store UserStore, auth config.AuthConfig) *UserService {
	return &UserService{store: store, auth: auth}
}

func toUser(u *db.User) *types.User {
	if u == nil {
		return nil
	}
	return &types.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Register creates a new user with password authentication
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.User, error) {
	exists, err := s.store.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	passwordHash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.store.CreateUser(ctx, req.Name, req.Email, passwordHash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return nil, &ErrEmailAlreadyExists{Email: req.Email}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return toUser(u), nil
}

// Login authenticates a user and returns user data
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	u, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	// Same error for unknown email and wrong password.
	if u == nil || !s.auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, &ErrInvalidCredentials{}
	}
	return toUser(u), nil
}
