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

var _ domain.SessionRepository = (*PostgresSessionRepository)(nil)

const sessionColumns = `id, user_id, resource_id, session_date, minutes_studied, created_at`

type PostgresSessionRepository struct {
	db *sqlx.DB
}

func NewPostgresSessionRepository(db *sqlx.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) Create(ctx context.Context, s *domain.StudySession) error {
	query := `
		INSERT INTO learning_sessions (` + sessionColumns + `)
		VALUES (:id, :user_id, :resource_id, :session_date, :minutes_studied, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		if pgErrorCode(err) == codeForeignKeyViolation {
			return domain.ErrResourceNotFound
		}
		return fmt.Errorf("repository: insert session failed: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) GetByID(ctx context.Context, id string) (*domain.StudySession, error) {
	var s domain.StudySession
	query := `SELECT ` + sessionColumns + ` FROM learning_sessions WHERE id = $1`

	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("repository: get session failed: %w", err)
	}
	normalizeSessionDate(&s)
	return &s, nil
}

func (r *PostgresSessionRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.StudySession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM learning_sessions
		WHERE user_id = $1
		ORDER BY session_date DESC, created_at DESC`

	return r.list(ctx, query, userID)
}

func (r *PostgresSessionRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.StudySession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM learning_sessions
		WHERE user_id = $1
		  AND session_date >= $2
		  AND session_date <= $3
		ORDER BY session_date DESC, created_at DESC`

	return r.list(ctx, query, userID, domain.DateKey(from), domain.DateKey(to))
}

func (r *PostgresSessionRepository) Delete(ctx context.Context, id string, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM learning_sessions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("repository: delete session failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *PostgresSessionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.StudySession, error) {
	sessions := []*domain.StudySession{}
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("repository: list sessions failed: %w", err)
	}
	for _, s := range sessions {
		normalizeSessionDate(s)
	}
	return sessions, nil
}

// DATE columns come back in the connection's zone; the analyzer expects UTC midnight.
func normalizeSessionDate(s *domain.StudySession) {
	s.SessionDate = domain.CalendarDay(s.SessionDate)
}
