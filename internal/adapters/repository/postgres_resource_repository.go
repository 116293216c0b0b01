package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.ResourceRepository = (*PostgresResourceRepository)(nil)

const resourceColumns = `id, user_id, title, type, url, notes, status, deadline, tags,
	time_spent, version, created_at, updated_at, completed_at`

// resourceRow maps the tags column, which the domain keeps as a plain slice.
type resourceRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Title       string         `db:"title"`
	Type        string         `db:"type"`
	URL         string         `db:"url"`
	Notes       string         `db:"notes"`
	Status      string         `db:"status"`
	Deadline    *time.Time     `db:"deadline"`
	Tags        pq.StringArray `db:"tags"`
	TimeSpent   int            `db:"time_spent"`
	Version     int            `db:"version"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	CompletedAt *time.Time     `db:"completed_at"`
}

func toResourceRow(r *domain.Resource) resourceRow {
	tags := pq.StringArray(r.Tags)
	if tags == nil {
		tags = pq.StringArray{}
	}
	return resourceRow{
		ID: r.ID, UserID: r.UserID, Title: r.Title, Type: string(r.Type),
		URL: r.URL, Notes: r.Notes, Status: string(r.Status), Deadline: r.Deadline,
		Tags: tags, TimeSpent: r.TimeSpent, Version: r.Version,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, CompletedAt: r.CompletedAt,
	}
}

func (row resourceRow) toDomain() *domain.Resource {
	return &domain.Resource{
		ID: row.ID, UserID: row.UserID, Title: row.Title, Type: domain.ResourceType(row.Type),
		URL: row.URL, Notes: row.Notes, Status: domain.ResourceStatus(row.Status), Deadline: row.Deadline,
		Tags: []string(row.Tags), TimeSpent: row.TimeSpent, Version: row.Version,
		CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt, CompletedAt: row.CompletedAt,
	}
}

type PostgresResourceRepository struct {
	db *sqlx.DB
}

func NewPostgresResourceRepository(db *sqlx.DB) *PostgresResourceRepository {
	return &PostgresResourceRepository{db: db}
}

func (r *PostgresResourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	query := `
		INSERT INTO learning_resources (` + resourceColumns + `)
		VALUES (
			:id, :user_id, :title, :type, :url, :notes, :status, :deadline, :tags,
			:time_spent, :version, :created_at, :updated_at, :completed_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, toResourceRow(res)); err != nil {
		switch pgErrorCode(err) {
		case codeUniqueViolation:
			return domain.ErrResourceConflict
		case codeForeignKeyViolation:
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("repository: insert resource failed: %w", err)
	}
	return nil
}

func (r *PostgresResourceRepository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	var row resourceRow
	query := `SELECT ` + resourceColumns + ` FROM learning_resources WHERE id = $1`

	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, fmt.Errorf("repository: get resource failed: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PostgresResourceRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Resource, error) {
	var rows []resourceRow
	query := `
		SELECT ` + resourceColumns + `
		FROM learning_resources
		WHERE user_id = $1
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("repository: list resources failed: %w", err)
	}

	resources := make([]*domain.Resource, 0, len(rows))
	for _, row := range rows {
		resources = append(resources, row.toDomain())
	}
	return resources, nil
}

func (r *PostgresResourceRepository) Update(ctx context.Context, res *domain.Resource) error {
	query := `
		UPDATE learning_resources
		SET title = :title,
		    type = :type,
		    url = :url,
		    notes = :notes,
		    status = :status,
		    deadline = :deadline,
		    tags = :tags,
		    time_spent = :time_spent,
		    version = :version,
		    updated_at = :updated_at,
		    completed_at = :completed_at
		WHERE id = :id
		  AND user_id = :user_id
		  AND version = :version - 1`

	result, err := r.db.NamedExecContext(ctx, query, toResourceRow(res))
	if err != nil {
		return fmt.Errorf("repository: update resource failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		exists, err := r.exists(ctx, res.ID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrResourceNotFound
		}
		return domain.ErrResourceConflict
	}
	return nil
}

func (r *PostgresResourceRepository) Delete(ctx context.Context, id string, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM learning_resources WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("repository: delete resource failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

func (r *PostgresResourceRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM learning_resources WHERE id = $1)`, id)
	return exists, err
}
