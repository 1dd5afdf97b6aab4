// Package storage persists chat messages, topic terms and run summaries in
// PostgreSQL or SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/todmy/topic-miner/internal/storage/migrations"
	"github.com/todmy/topic-miner/pkg/models"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// TopicTermRepository defines the interface for topic term storage operations
type TopicTermRepository interface {
	SaveTopicTerm(ctx context.Context, term models.TopicTerm) error
	GetByPeriod(ctx context.Context, merchant string, period models.Period) ([]models.TopicTerm, error)
	DeleteByPeriod(ctx context.Context, merchant string, period models.Period) error
}

// RunRepository defines the interface for run summary storage operations
type RunRepository interface {
	Create(ctx context.Context, run *models.Run) error
	GetLatest(ctx context.Context, merchant string) (*models.Run, error)
}

// MessageRepository defines the interface for chat message storage operations
type MessageRepository interface {
	ListByPeriod(ctx context.Context, period models.Period) ([]models.ChatMessage, error)
	CreateBatch(ctx context.Context, msgs []models.ChatMessage) error
}

// Store groups the repositories backed by one database
type Store struct {
	DB         *sql.DB
	Driver     string
	TopicTerms TopicTermRepository
	Runs       RunRepository
	Messages   MessageRepository // nil for SQLite
}

// Open connects to the database and builds its repositories
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case DriverPostgres:
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("pinging database: %w", err)
		}
		return NewPostgresStore(db), nil
	case DriverSQLite:
		return OpenSQLite(ctx, dsn)
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// Migrate applies the schema of the store's driver
func (s *Store) Migrate(ctx context.Context) error {
	fsys := migrations.Postgres()
	if s.Driver == DriverSQLite {
		fsys = migrations.SQLite()
	}
	return migrate(ctx, s.DB, fsys)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.DB.Close()
}

// migrate runs every *.up.sql file newer than the recorded schema version
func migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf("INSERT INTO schema_migrations (version) VALUES (%d)", version)); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
