package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"regexp"
	"sort"
	"strconv"

	"github.com/jmoiron/sqlx"
)

var ErrDirtyDatabase = errors.New("database is in a dirty migration state")

var migrationFile = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// LoadMigrations reads NNN_name.up.sql / NNN_name.down.sql pairs from fsys, sorted by version.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	byVersion := make(map[int]*Migration)

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		matches := migrationFile.FindStringSubmatch(path.Base(p))
		if matches == nil {
			return nil
		}

		version, _ := strconv.Atoi(matches[1])
		body, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Name: matches[2]}
			byVersion[version] = m
		}
		if matches[3] == "up" {
			m.UpSQL = string(body)
		} else {
			m.DownSQL = string(body)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" {
			return nil, fmt.Errorf("migration %03d_%s has no up script", m.Version, m.Name)
		}
		result = append(result, *m)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})
	return result, nil
}

type Migrator struct {
	db         *sqlx.DB
	migrations []Migration
}

func NewMigrator(db *sqlx.DB, fsys fs.FS) (*Migrator, error) {
	migrations, err := LoadMigrations(fsys)
	if err != nil {
		return nil, err
	}
	return &Migrator{db: db, migrations: migrations}, nil
}

func (m *Migrator) Latest() int {
	if len(m.migrations) == 0 {
		return 0
	}
	return m.migrations[len(m.migrations)-1].Version
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty   BOOLEAN NOT NULL DEFAULT FALSE
		)`)
	return err
}

// Version returns the applied version and whether a previous run failed halfway.
func (m *Migrator) Version(ctx context.Context) (int, bool, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, false, fmt.Errorf("migrator: ensure table: %w", err)
	}

	var version int
	var dirty bool
	err := m.db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migrator: read version: %w", err)
	}
	return version, dirty, nil
}

func (m *Migrator) Up(ctx context.Context) (int, error) {
	return m.To(ctx, m.Latest())
}

// To moves the schema up or down to target and reports how many steps ran.
func (m *Migrator) To(ctx context.Context, target int) (int, error) {
	current, dirty, err := m.Version(ctx)
	if err != nil {
		return 0, err
	}
	if dirty {
		return 0, fmt.Errorf("%w at version %d", ErrDirtyDatabase, current)
	}

	steps := 0
	if target >= current {
		for _, mig := range m.migrations {
			if mig.Version <= current || mig.Version > target {
				continue
			}
			if err := m.apply(ctx, mig.Version, mig.UpSQL, mig.Version); err != nil {
				return steps, fmt.Errorf("migrator: up %03d_%s: %w", mig.Version, mig.Name, err)
			}
			log.Printf("[MIGRATE] Applied %03d_%s", mig.Version, mig.Name)
			steps++
		}
		return steps, nil
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if mig.Version > current || mig.Version <= target {
			continue
		}
		if mig.DownSQL == "" {
			return steps, fmt.Errorf("migrator: %03d_%s has no down script", mig.Version, mig.Name)
		}
		previous := 0
		if i > 0 {
			previous = m.migrations[i-1].Version
		}
		if err := m.apply(ctx, mig.Version, mig.DownSQL, previous); err != nil {
			return steps, fmt.Errorf("migrator: down %03d_%s: %w", mig.Version, mig.Name, err)
		}
		log.Printf("[MIGRATE] Reverted %03d_%s", mig.Version, mig.Name)
		steps++
	}
	return steps, nil
}

// apply marks the version dirty, runs the script in a transaction and records the resulting version.
func (m *Migrator) apply(ctx context.Context, version int, script string, resulting int) error {
	if err := m.setVersion(ctx, m.db, version, true); err != nil {
		return err
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if err := m.setVersion(ctx, tx, resulting, false); err != nil {
		return err
	}
	return tx.Commit()
}

func (m *Migrator) setVersion(ctx context.Context, exec sqlx.ExecerContext, version int, dirty bool) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}
	if version == 0 && !dirty {
		return nil
	}
	_, err := exec.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES ($1, $2)`, version, dirty)
	return err
}
