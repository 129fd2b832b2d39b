package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned by every repository when a lookup matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

const uniqueViolation = "23505"

// DBTX is the subset of pgx shared by pools and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store groups the repositories behind one durable backend.
type Store interface {
	Complaints() ComplaintRepository
	History() StatusHistoryRepository
	Users() UserRepository
	// WithinTx runs fn as one all-or-nothing unit of work. Repositories
	// obtained from the Store passed to fn participate in it.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type pgStore struct {
	pool *pgxpool.Pool
	db   DBTX
}

// NewPostgresStore builds a Store over a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, db: pool}
}

func (s *pgStore) Complaints() ComplaintRepository  { return &complaintRepository{db: s.db} }
func (s *pgStore) History() StatusHistoryRepository { return &statusHistoryRepository{db: s.db} }
func (s *pgStore) Users() UserRepository            { return &userRepository{db: s.db} }

func (s *pgStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.pool == nil {
		// already inside a transaction
		return fn(s)
	}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&pgStore{db: tx})
	})
	if err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
