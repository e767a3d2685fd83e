package service

import (
	"context"
	"errors"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"go.uber.org/zap"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type Credentials struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

var errInvalidCredentials = &apperr.Error{Kind: apperr.Unauthenticated, Message: "Invalid username or password"}

type Users struct {
	store  repository.Store
	hasher PasswordHasher
	logger *zap.Logger
}

func NewUsers(store repository.Store, hasher PasswordHasher, logger *zap.Logger) *Users {
	return &Users{store: store, hasher: hasher, logger: logger.Named("users")}
}

func (s *Users) Register(ctx context.Context, in Credentials) (*models.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	return s.create(ctx, in.Username, in.Password, false)
}

func (s *Users) create(ctx context.Context, username, password string, isAdmin bool) (*models.User, error) {
	if _, err := s.store.Users().FindByUsername(ctx, username); err == nil {
		return nil, apperr.ValidationError("Username already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, internal("Failed to register user", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, internal("Failed to register user", err)
	}

	user := &models.User{Username: username, Password: hash, IsAdmin: isAdmin}
	err = s.store.Users().Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.ValidationError("Username already exists")
	}
	if err != nil {
		return nil, internal("Failed to register user", err)
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.Bool("admin", isAdmin))
	return user, nil
}

func (s *Users) Authenticate(ctx context.Context, in Credentials) (*models.User, error) {
	user, err := s.store.Users().FindByUsername(ctx, in.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, internal("Failed to authenticate", err)
	}
	if !s.hasher.Verify(in.Password, user.Password) {
		return nil, errInvalidCredentials
	}
	return user, nil
}

func (s *Users) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFoundError("User not found")
	}
	if err != nil {
		return nil, internal("Failed to fetch user", err)
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account if no user has that name yet.
// An empty username disables bootstrapping.
func (s *Users) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" {
		return nil
	}

	existing, err := s.store.Users().FindByUsername(ctx, username)
	if err == nil {
		if !existing.IsAdmin {
			s.logger.Warn("Bootstrap admin name belongs to a regular user", zap.String("username", username))
		}
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return internal("Failed to look up admin", err)
	}

	if err := Validator.Struct(Credentials{Username: username, Password: password}); err != nil {
		return ValidationFailed(err)
	}
	_, err = s.create(ctx, username, password, true)
	return err
}
