package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

var (
	_ domain.GoalRepository        = (*PostgresGoalRepository)(nil)
	_ domain.AchievementRepository = (*PostgresAchievementRepository)(nil)
)

const goalColumns = `id, user_id, title, description, type, target_value, current_value,
	period, start_date, end_date, status, created_at, updated_at`

type PostgresGoalRepository struct {
	db *sqlx.DB
}

func NewPostgresGoalRepository(db *sqlx.DB) *PostgresGoalRepository {
	return &PostgresGoalRepository{db: db}
}

func (r *PostgresGoalRepository) Create(ctx context.Context, g *domain.Goal) error {
	query := `
		INSERT INTO learning_goals (` + goalColumns + `)
		VALUES (
			:id, :user_id, :title, :description, :type, :target_value, :current_value,
			:period, :start_date, :end_date, :status, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, g); err != nil {
		return fmt.Errorf("repository: insert goal failed: %w", err)
	}
	return nil
}

func (r *PostgresGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	var g domain.Goal
	query := `SELECT ` + goalColumns + ` FROM learning_goals WHERE id = $1`

	if err := r.db.GetContext(ctx, &g, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, fmt.Errorf("repository: get goal failed: %w", err)
	}
	normalizeGoalDates(&g)
	return &g, nil
}

func (r *PostgresGoalRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Goal, error) {
	goals := []*domain.Goal{}
	query := `
		SELECT ` + goalColumns + `
		FROM learning_goals
		WHERE user_id = $1
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &goals, query, userID); err != nil {
		return nil, fmt.Errorf("repository: list goals failed: %w", err)
	}
	for _, g := range goals {
		normalizeGoalDates(g)
	}
	return goals, nil
}

func (r *PostgresGoalRepository) Update(ctx context.Context, g *domain.Goal) error {
	query := `
		UPDATE learning_goals
		SET title = :title,
		    description = :description,
		    current_value = :current_value,
		    status = :status,
		    updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`

	result, err := r.db.NamedExecContext(ctx, query, g)
	if err != nil {
		return fmt.Errorf("repository: update goal failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

func (r *PostgresGoalRepository) UpdateProgress(ctx context.Context, g *domain.Goal) (bool, error) {
	query := `
		UPDATE learning_goals
		SET current_value = :current_value,
		    status = :status,
		    updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id AND status = 'active'`

	result, err := r.db.NamedExecContext(ctx, query, g)
	if err != nil {
		return false, fmt.Errorf("repository: update goal progress failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func normalizeGoalDates(g *domain.Goal) {
	g.StartDate = domain.CalendarDay(g.StartDate)
	g.EndDate = domain.CalendarDay(g.EndDate)
}

type PostgresAchievementRepository struct {
	db *sqlx.DB
}

func NewPostgresAchievementRepository(db *sqlx.DB) *PostgresAchievementRepository {
	return &PostgresAchievementRepository{db: db}
}

func (r *PostgresAchievementRepository) Award(ctx context.Context, a *domain.Achievement) (bool, error) {
	query := `
		INSERT INTO achievements (id, user_id, key, title, description, icon, category, earned_at, created_at)
		VALUES (:id, :user_id, :key, :title, :description, :icon, :category, :earned_at, :created_at)
		ON CONFLICT (user_id, key) DO NOTHING`

	result, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return false, fmt.Errorf("repository: award achievement failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *PostgresAchievementRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Achievement, error) {
	achievements := []*domain.Achievement{}
	query := `
		SELECT id, user_id, key, title, description, icon, category, earned_at, created_at
		FROM achievements
		WHERE user_id = $1
		ORDER BY earned_at DESC`

	if err := r.db.SelectContext(ctx, &achievements, query, userID); err != nil {
		return nil, fmt.Errorf("repository: list achievements failed: %w", err)
	}
	return achievements, nil
}
