package pg

import (
	"context"
	"database/sql"
	"time"

	"supplychainx.org/internal/domain"
)

const userColumns = `id, first_name, last_name, email, password_hash, role`

type userRepo struct{ q *sql.Tx }

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	if err := s.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r userRepo) Create(ctx context.Context, u *domain.User) error {
	err := r.q.QueryRowContext(ctx,
		`insert into users(first_name, last_name, email, password_hash, role) values($1,$2,$3,$4,$5) returning id`,
		u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Role,
	).Scan(&u.ID)
	return mapError(err)
}

func (r userRepo) Find(ctx context.Context, id int64) (*domain.User, error) {
	return one(r.q.QueryRowContext(ctx, `select `+userColumns+` from users where id=$1`, id), scanUser)
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return one(r.q.QueryRowContext(ctx, `select `+userColumns+` from users where lower(email)=lower($1)`, email), scanUser)
}

func (r userRepo) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.q.QueryContext(ctx, `select `+userColumns+` from users order by id`)
	return collect(rows, err, scanUser)
}

func (r userRepo) UpdateRole(ctx context.Context, id int64, role domain.Role) error {
	return affected(r.q.ExecContext(ctx, `update users set role=$2 where id=$1`, id, role))
}

type tokenRepo struct{ q *sql.Tx }

func scanToken(s scanner) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	if err := s.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt, &t.Revoked); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r tokenRepo) Create(ctx context.Context, tok *domain.RefreshToken) error {
	err := r.q.QueryRowContext(ctx,
		`insert into refresh_tokens(id, user_id, token_hash, expires_at) values($1,$2,$3,$4) returning created_at`,
		tok.ID, tok.UserID, tok.TokenHash, tok.ExpiresAt,
	).Scan(&tok.CreatedAt)
	return mapError(err)
}

func (r tokenRepo) FindByToken(ctx context.Context, id string) (*domain.RefreshToken, error) {
	return one(r.q.QueryRowContext(ctx,
		`select id, user_id, token_hash, expires_at, created_at, revoked from refresh_tokens where id=$1`, id), scanToken)
}

func (r tokenRepo) FindActive(ctx context.Context, id string) (*domain.RefreshToken, error) {
	return one(r.q.QueryRowContext(ctx,
		`select id, user_id, token_hash, expires_at, created_at, revoked from refresh_tokens where id=$1 and not revoked for update`, id), scanToken)
}

func (r tokenRepo) Revoke(ctx context.Context, id string) (bool, error) {
	res, err := r.q.ExecContext(ctx, `update refresh_tokens set revoked=true where id=$1 and not revoked`, id)
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r tokenRepo) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `delete from refresh_tokens where user_id=$1`, userID)
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}

func (r tokenRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `delete from refresh_tokens where expires_at < $1`, cutoff)
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}
