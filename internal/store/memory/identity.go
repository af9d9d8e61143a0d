package memory

import (
	"context"
	"strings"
	"time"

	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
)

type userRepo struct{ t *tx }

func (r userRepo) Create(_ context.Context, u *domain.User) error {
	if err := r.t.write(); err != nil {
		return err
	}
	for _, existing := range r.t.st.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return store.ErrConflict
		}
	}
	u.ID = r.t.st.next("users")
	r.t.st.users[u.ID] = *u
	return nil
}

func (r userRepo) Find(_ context.Context, id int64) (*domain.User, error) {
	return find(r.t.st.users, id, same[domain.User])
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.t.st.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r userRepo) List(context.Context) ([]*domain.User, error) {
	return rows(r.t.st.users, same[domain.User], nil), nil
}

func (r userRepo) UpdateRole(_ context.Context, id int64, role domain.Role) error {
	if err := r.t.write(); err != nil {
		return err
	}
	u, ok := r.t.st.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Role = role
	r.t.st.users[id] = u
	return nil
}

type tokenRepo struct{ t *tx }

func (r tokenRepo) Create(_ context.Context, tok *domain.RefreshToken) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.tokens[tok.ID]; ok {
		return store.ErrConflict
	}
	if _, ok := r.t.st.users[tok.UserID]; !ok {
		return store.ErrReferenced
	}
	if tok.CreatedAt.IsZero() {
		tok.CreatedAt = time.Now().UTC()
	}
	r.t.st.tokens[tok.ID] = *tok
	return nil
}

func (r tokenRepo) FindByToken(_ context.Context, id string) (*domain.RefreshToken, error) {
	tok, ok := r.t.st.tokens[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &tok, nil
}

func (r tokenRepo) FindActive(_ context.Context, id string) (*domain.RefreshToken, error) {
	tok, ok := r.t.st.tokens[id]
	if !ok || tok.Revoked {
		return nil, store.ErrNotFound
	}
	return &tok, nil
}

func (r tokenRepo) Revoke(_ context.Context, id string) (bool, error) {
	if err := r.t.write(); err != nil {
		return false, err
	}
	tok, ok := r.t.st.tokens[id]
	if !ok || tok.Revoked {
		return false, nil
	}
	tok.Revoked = true
	r.t.st.tokens[id] = tok
	return true, nil
}

func (r tokenRepo) DeleteByUser(_ context.Context, userID int64) (int64, error) {
	if err := r.t.write(); err != nil {
		return 0, err
	}
	var n int64
	for id, tok := range r.t.st.tokens {
		if tok.UserID == userID {
			delete(r.t.st.tokens, id)
			n++
		}
	}
	return n, nil
}

func (r tokenRepo) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	if err := r.t.write(); err != nil {
		return 0, err
	}
	var n int64
	for id, tok := range r.t.st.tokens {
		if tok.ExpiresAt.Before(cutoff) {
			delete(r.t.st.tokens, id)
			n++
		}
	}
	return n, nil
}
