package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, password_hash, created_at, updated_at`

type PostgresUserRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{
		db:      db,
		timeout: 3 * time.Second,
	}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (:id, :email, :password_hash, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if pgErrorCode(err) == codeUniqueViolation {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("repository: create user failed: %w", err)
	}

	return nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "id", id)
}

// column is always a constant chosen by this file.
func (r *PostgresUserRepository) getOne(ctx context.Context, column, value string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	if err := r.db.GetContext(ctx, &user, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: get user by %s failed: %w", column, err)
	}

	return &user, nil
}
