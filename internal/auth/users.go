package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
)

// NewUser is the input for account creation.
type NewUser struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
}

// CreateUser validates and persists a new account with a bcrypt hash.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (*domain.User, error) {
	var v apperr.Violations
	v.Check(strings.TrimSpace(in.FirstName) != "", "firstName", "must not be blank")
	v.Check(strings.TrimSpace(in.LastName) != "", "lastName", "must not be blank")
	email := normalizeEmail(in.Email)
	if email == "" {
		v.Add("email", "must not be blank")
	} else if _, err := mail.ParseAddress(email); err != nil {
		v.Add("email", "must be a well-formed email address")
	}
	v.Check(len(in.Password) >= MinPasswordLength, "password", "must be at least 8 characters")
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		v.Add("role", "must be one of the known roles")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().FindByEmail(ctx, email)
		switch {
		case err == nil:
			return apperr.BusinessRulef("email %s is already in use", email)
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return apperr.BusinessRulef("email %s is already in use", email)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateRole changes a user's role and revokes their refresh tokens so the
// next session carries the new role.
func (s *Service) UpdateRole(ctx context.Context, userID int64, rawRole string) (*domain.User, error) {
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return nil, apperr.Validationf("role: must be one of the known roles")
	}
	var user *domain.User
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateRole(ctx, userID, role); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFoundf("user %d not found", userID)
			}
			return err
		}
		if _, err := tx.RefreshTokens().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		u, err := tx.Users().Find(ctx, userID)
		user = u
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns every account ordered by id.
func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		list, err := tx.Users().List(ctx)
		users = list
		return err
	})
	return users, err
}

// GetUser returns one account.
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().Find(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFoundf("user %d not found", id)
		}
		user = u
		return err
	})
	return user, err
}
