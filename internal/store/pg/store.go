// Package pg implements store.Store on PostgreSQL through database/sql and
// the pgx driver.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"supplychainx.org/internal/store"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNumericOutOfRange   = "22003"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	db *sql.DB
}

// Open connects with pool defaults suited to a single API instance.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// New wraps an existing handle.
func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) WithTx(ctx context.Context, fn func(store.Tx) error) error {
	return s.run(ctx, nil, fn)
}

func (s *Store) WithReadTx(ctx context.Context, fn func(store.Tx) error) error {
	return s.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (s *Store) run(ctx context.Context, opts *sql.TxOptions, fn func(store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&pgTx{q: tx}); err != nil {
		return err
	}
	return mapError(tx.Commit())
}

type pgTx struct {
	q *sql.Tx
}

func (t *pgTx) Users() store.UserRepo                       { return userRepo{t.q} }
func (t *pgTx) RefreshTokens() store.RefreshTokenRepo       { return tokenRepo{t.q} }
func (t *pgTx) Suppliers() store.SupplierRepo               { return supplierRepo{t.q} }
func (t *pgTx) RawMaterials() store.RawMaterialRepo         { return materialRepo{t.q} }
func (t *pgTx) SupplyOrders() store.SupplyOrderRepo         { return supplyOrderRepo{t.q} }
func (t *pgTx) Products() store.ProductRepo                 { return productRepo{t.q} }
func (t *pgTx) BOM() store.BOMRepo                          { return bomRepo{t.q} }
func (t *pgTx) ProductionOrders() store.ProductionOrderRepo { return productionOrderRepo{t.q} }
func (t *pgTx) Customers() store.CustomerRepo               { return customerRepo{t.q} }
func (t *pgTx) Orders() store.OrderRepo                     { return orderRepo{t.q} }
func (t *pgTx) Deliveries() store.DeliveryRepo              { return deliveryRepo{t.q} }

// mapError translates driver errors into store sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.ConstraintName)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %s", store.ErrReferenced, pgErr.ConstraintName)
		case codeCheckViolation:
			return fmt.Errorf("%w: %s", store.ErrInvalid, pgErr.ConstraintName)
		case codeNumericOutOfRange:
			return fmt.Errorf("%w: %s", store.ErrInvalid, pgErr.Message)
		}
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

// collect scans every row with scan and closes rows.
func collect[T any](rows *sql.Rows, err error, scan func(scanner) (*T, error)) ([]*T, error) {
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	out := []*T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func one[T any](row *sql.Row, scan func(scanner) (*T, error)) (*T, error) {
	v, err := scan(row)
	if err != nil {
		return nil, mapError(err)
	}
	return v, nil
}

// affected converts a zero row count into store.ErrNotFound.
func affected(res sql.Result, err error) error {
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func count(ctx context.Context, q *sql.Tx, query string, args ...any) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

func lock(ctx context.Context, q *sql.Tx, table string, id int64) error {
	var dummy int64
	err := q.QueryRowContext(ctx, `select id from `+table+` where id=$1 for update`, id).Scan(&dummy)
	return mapError(err)
}

func likePattern(fragment string) string {
	return "%" + escapeLike(fragment) + "%"
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

func placeholder(n int) string { return fmt.Sprintf("$%d", n) }
