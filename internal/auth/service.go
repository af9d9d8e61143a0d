// Package auth authenticates users, issues access and refresh tokens with
// rotation, and holds the role matrix guarding the API.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/obs"
	"supplychainx.org/internal/store"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
	defaultIssuer     = "supplychainx"

	// TokenType is the scheme reported alongside issued access tokens.
	TokenType = "Bearer"
)

var errInvalidCredentials = apperr.Unauthorizedf("invalid credentials")

// Service issues and validates credentials.
type Service struct {
	store      store.Store
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service) error

// WithIssuer overrides the token issuer claim.
func WithIssuer(issuer string) ServiceOption {
	return func(s *Service) error {
		if issuer = strings.TrimSpace(issuer); issuer != "" {
			s.issuer = issuer
		}
		return nil
	}
}

// WithAccessTTL configures access token lifetime.
func WithAccessTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) error {
		if ttl > 0 {
			s.accessTTL = ttl
		}
		return nil
	}
}

// WithRefreshTTL configures refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) error {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
		return nil
	}
}

// WithClock overrides time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// NewService constructs Service signing tokens with secret (HS256).
func NewService(st store.Store, secret string, opts ...ServiceOption) (*Service, error) {
	if st == nil {
		return nil, errors.New("auth: store is required")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	svc := &Service{
		store:      st,
		secret:     []byte(secret),
		issuer:     defaultIssuer,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	UserID           int64
	Email            string
	Role             domain.Role
}

// Login verifies credentials and issues a fresh token pair.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return TokenPair{}, errInvalidCredentials
	}
	var user *domain.User
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return TokenPair{}, errInvalidCredentials
	}
	if err != nil {
		return TokenPair{}, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return TokenPair{}, errInvalidCredentials
	}

	var pair TokenPair
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		p, err := s.mint(ctx, tx, user)
		pair = p
		return err
	})
	if err != nil {
		return TokenPair{}, err
	}
	obs.RecordTokensIssued("password")
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued in the same transaction.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	id, secret, err := splitRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, apperr.Unauthorizedf("invalid refresh token")
	}
	var pair TokenPair
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		rec, err := tx.RefreshTokens().FindActive(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Unauthorizedf("invalid refresh token")
		}
		if err != nil {
			return err
		}
		if !secretMatches(rec.TokenHash, secret) {
			return apperr.Unauthorizedf("invalid refresh token")
		}
		if rec.Expired(s.now()) {
			return apperr.Unauthorizedf("refresh token expired")
		}
		revoked, err := tx.RefreshTokens().Revoke(ctx, id)
		if err != nil {
			return err
		}
		if !revoked {
			return apperr.Unauthorizedf("invalid refresh token")
		}
		user, err := tx.Users().Find(ctx, rec.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Unauthorizedf("invalid refresh token")
		}
		if err != nil {
			return err
		}
		pair, err = s.mint(ctx, tx, user)
		return err
	})
	if err != nil {
		return TokenPair{}, err
	}
	obs.RecordTokensIssued("refresh")
	return pair, nil
}

// Logout revokes a refresh token. Unknown tokens are rejected.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	id, secret, err := splitRefreshToken(refreshToken)
	if err != nil {
		return apperr.Unauthorizedf("invalid refresh token")
	}
	return s.store.WithTx(ctx, func(tx store.Tx) error {
		rec, err := tx.RefreshTokens().FindByToken(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Unauthorizedf("invalid refresh token")
		}
		if err != nil {
			return err
		}
		if !secretMatches(rec.TokenHash, secret) {
			return apperr.Unauthorizedf("invalid refresh token")
		}
		_, err = tx.RefreshTokens().Revoke(ctx, id)
		return err
	})
}

// Authenticate validates an access token and returns the principal it names.
func (s *Service) Authenticate(token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, apperr.Unauthorizedf("missing bearer token")
	}
	claims, err := s.parseAccessToken(token)
	if err != nil {
		return Principal{}, apperr.Unauthorizedf("invalid or expired token")
	}
	return Principal{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// SweepExpired deletes refresh tokens whose expiry is in the past.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	var n int64
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		deleted, err := tx.RefreshTokens().DeleteExpiredBefore(ctx, s.now())
		n = deleted
		return err
	})
	if err != nil {
		return 0, err
	}
	obs.RecordTokensSwept(n)
	return n, nil
}

// RunSweeper calls SweepExpired every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepExpired(ctx)
			if err != nil {
				obs.Logger().Warn("refresh token sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				obs.Logger().Info("refresh tokens swept", zap.Int64("deleted", n))
			}
		}
	}
}

func (s *Service) mint(ctx context.Context, tx store.Tx, user *domain.User) (TokenPair, error) {
	now := s.now()
	access, accessExp, err := s.signAccessToken(user, now)
	if err != nil {
		return TokenPair{}, err
	}
	raw, rec, err := s.newRefreshToken(user.ID, now)
	if err != nil {
		return TokenPair{}, err
	}
	if err := tx.RefreshTokens().Create(ctx, rec); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     raw,
		TokenType:        TokenType,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: rec.ExpiresAt,
		UserID:           user.ID,
		Email:            user.Email,
		Role:             user.Role,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
