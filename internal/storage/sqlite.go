package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/todmy/topic-miner/pkg/models"
)

// OpenSQLite opens a SQLite database at path (":memory:" for a private in-memory database)
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// an in-memory database lives only as long as its connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Store{
		DB:         db,
		Driver:     DriverSQLite,
		TopicTerms: &SQLiteTopicTermRepository{db: db},
		Runs:       &SQLiteRunRepository{db: db},
	}, nil
}

// SQLiteTopicTermRepository implements TopicTermRepository using SQLite
type SQLiteTopicTermRepository struct {
	db *sql.DB
}

var _ TopicTermRepository = (*SQLiteTopicTermRepository)(nil)

// SaveTopicTerm inserts one topic term record
func (r *SQLiteTopicTermRepository) SaveTopicTerm(ctx context.Context, term models.TopicTerm) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO topic_terms (topic_cluster, word, score, merchant_name, year, month)
		VALUES (?, ?, ?, ?, ?, ?)
	`, term.TopicCluster, term.Word, term.Score, term.MerchantName, term.Year, term.Month)
	if err != nil {
		return fmt.Errorf("saving topic term: %w", err)
	}
	return nil
}

// GetByPeriod retrieves a merchant's topic terms for a period, grouped by topic with the highest scores first
func (r *SQLiteTopicTermRepository) GetByPeriod(ctx context.Context, merchant string, period models.Period) ([]models.TopicTerm, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT topic_cluster, word, score, merchant_name, year, month
		FROM topic_terms
		WHERE merchant_name = ? AND year = ? AND month = ?
		ORDER BY topic_cluster ASC, score DESC, word ASC
	`, merchant, period.Year, period.Month)
	if err != nil {
		return nil, fmt.Errorf("querying topic terms: %w", err)
	}
	defer rows.Close()

	return scanTopicTerms(rows)
}

// DeleteByPeriod removes a merchant's topic terms for a period
func (r *SQLiteTopicTermRepository) DeleteByPeriod(ctx context.Context, merchant string, period models.Period) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM topic_terms WHERE merchant_name = ? AND year = ? AND month = ?",
		merchant, period.Year, period.Month)
	if err != nil {
		return fmt.Errorf("deleting topic terms: %w", err)
	}
	return nil
}

// SQLiteRunRepository implements RunRepository using SQLite.
// The per-candidate columns are stored as JSON arrays.
type SQLiteRunRepository struct {
	db *sql.DB
}

var _ RunRepository = (*SQLiteRunRepository)(nil)

// Create inserts a new run summary
func (r *SQLiteRunRepository) Create(ctx context.Context, run *models.Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	evaluated, err := json.Marshal(run.EvaluatedTopics)
	if err != nil {
		return fmt.Errorf("marshalling evaluated topics: %w", err)
	}
	scores, err := json.Marshal(run.CoherenceScores)
	if err != nil {
		return fmt.Errorf("marshalling coherence scores: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO topic_runs (id, merchant_name, year, month, num_topics, coherence,
			evaluated_topics, coherence_scores, documents, vocabulary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID.String(), run.MerchantName, run.Year, run.Month, run.NumTopics, run.Coherence,
		string(evaluated), string(scores), run.Documents, run.Vocabulary, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent run of a merchant, or nil if there is none
func (r *SQLiteRunRepository) GetLatest(ctx context.Context, merchant string) (*models.Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, merchant_name, year, month, num_topics, coherence,
			evaluated_topics, coherence_scores, documents, vocabulary, created_at
		FROM topic_runs
		WHERE merchant_name = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, merchant)

	var run models.Run
	var id, evaluated, scores string
	var createdAt sql.NullTime
	err := row.Scan(&id, &run.MerchantName, &run.Year, &run.Month, &run.NumTopics, &run.Coherence,
		&evaluated, &scores, &run.Documents, &run.Vocabulary, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing run id: %w", err)
	}
	if err := json.Unmarshal([]byte(evaluated), &run.EvaluatedTopics); err != nil {
		return nil, fmt.Errorf("unmarshaling evaluated topics: %w", err)
	}
	if err := json.Unmarshal([]byte(scores), &run.CoherenceScores); err != nil {
		return nil, fmt.Errorf("unmarshaling coherence scores: %w", err)
	}
	if createdAt.Valid {
		run.CreatedAt = createdAt.Time
	}

	return &run, nil
}
