package repository

import (
	"context"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// UserRepository defines persistence access for identities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

type userRepository struct {
	db DBTX
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, full_name, role, password_hash)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		user.Email,
		user.FullName,
		user.Role,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
	return duplicate(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, email, full_name, role, password_hash, created_at
        FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, email, full_name, role, password_hash, created_at
        FROM users WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg string) (*domain.User, error) {
	var user domain.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	const query = `
        SELECT id, email, full_name, role, password_hash, created_at
        FROM users WHERE role=$1 ORDER BY full_name ASC`
	rows, err := r.db.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Email, &user.FullName, &user.Role, &user.PasswordHash, &user.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}
