package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/todmy/topic-miner/pkg/models"
)

// NewPostgresStore builds the PostgreSQL repositories over an open connection
func NewPostgresStore(db *sql.DB) *Store {
	return &Store{
		DB:         db,
		Driver:     DriverPostgres,
		TopicTerms: NewPostgresTopicTermRepository(db),
		Runs:       NewPostgresRunRepository(db),
		Messages:   NewPostgresMessageRepository(db),
	}
}

// PostgresTopicTermRepository implements TopicTermRepository using PostgreSQL
type PostgresTopicTermRepository struct {
	db *sql.DB
}

// NewPostgresTopicTermRepository creates a new PostgresTopicTermRepository
func NewPostgresTopicTermRepository(db *sql.DB) *PostgresTopicTermRepository {
	return &PostgresTopicTermRepository{db: db}
}

// SaveTopicTerm inserts one topic term record
func (r *PostgresTopicTermRepository) SaveTopicTerm(ctx context.Context, term models.TopicTerm) error {
	query := `
		INSERT INTO topic_terms (topic_cluster, word, score, merchant_name, year, month)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		term.TopicCluster,
		term.Word,
		term.Score,
		term.MerchantName,
		term.Year,
		term.Month,
	)

	return err
}

// GetByPeriod retrieves a merchant's topic terms for a period, grouped by topic with the highest scores first
func (r *PostgresTopicTermRepository) GetByPeriod(ctx context.Context, merchant string, period models.Period) ([]models.TopicTerm, error) {
	query := `
		SELECT topic_cluster, word, score, merchant_name, year, month
		FROM topic_terms
		WHERE merchant_name = $1 AND year = $2 AND month = $3
		ORDER BY topic_cluster ASC, score DESC, word ASC
	`

	rows, err := r.db.QueryContext(ctx, query, merchant, period.Year, period.Month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTopicTerms(rows)
}

// DeleteByPeriod removes a merchant's topic terms for a period
func (r *PostgresTopicTermRepository) DeleteByPeriod(ctx context.Context, merchant string, period models.Period) error {
	query := `DELETE FROM topic_terms WHERE merchant_name = $1 AND year = $2 AND month = $3`
	_, err := r.db.ExecContext(ctx, query, merchant, period.Year, period.Month)
	return err
}

func scanTopicTerms(rows *sql.Rows) ([]models.TopicTerm, error) {
	var terms []models.TopicTerm
	for rows.Next() {
		var term models.TopicTerm
		err := rows.Scan(
			&term.TopicCluster,
			&term.Word,
			&term.Score,
			&term.MerchantName,
			&term.Year,
			&term.Month,
		)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return terms, nil
}

// PostgresRunRepository implements RunRepository using PostgreSQL with pgvector
type PostgresRunRepository struct {
	db *sql.DB
}

// NewPostgresRunRepository creates a new PostgresRunRepository
func NewPostgresRunRepository(db *sql.DB) *PostgresRunRepository {
	return &PostgresRunRepository{db: db}
}

// Create inserts a new run summary
func (r *PostgresRunRepository) Create(ctx context.Context, run *models.Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	evaluated := make([]int64, len(run.EvaluatedTopics))
	for i, k := range run.EvaluatedTopics {
		evaluated[i] = int64(k)
	}

	query := `
		INSERT INTO topic_runs (id, merchant_name, year, month, num_topics, coherence,
			evaluated_topics, coherence_scores, documents, vocabulary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.MerchantName,
		run.Year,
		run.Month,
		run.NumTopics,
		run.Coherence,
		pq.Array(evaluated),
		pgvector.NewVector(run.CoherenceScores),
		run.Documents,
		run.Vocabulary,
		run.CreatedAt,
	)

	return err
}

// GetLatest retrieves the most recent run of a merchant, or nil if there is none
func (r *PostgresRunRepository) GetLatest(ctx context.Context, merchant string) (*models.Run, error) {
	query := `
		SELECT id, merchant_name, year, month, num_topics, coherence,
			evaluated_topics, coherence_scores, documents, vocabulary, created_at
		FROM topic_runs
		WHERE merchant_name = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	run := &models.Run{}
	var evaluated []int64
	var scores pgvector.Vector
	err := r.db.QueryRowContext(ctx, query, merchant).Scan(
		&run.ID,
		&run.MerchantName,
		&run.Year,
		&run.Month,
		&run.NumTopics,
		&run.Coherence,
		pq.Array(&evaluated),
		&scores,
		&run.Documents,
		&run.Vocabulary,
		&run.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	run.EvaluatedTopics = make([]int, len(evaluated))
	for i, k := range evaluated {
		run.EvaluatedTopics[i] = int(k)
	}
	run.CoherenceScores = scores.Slice()

	return run, nil
}

// PostgresMessageRepository implements MessageRepository using PostgreSQL
type PostgresMessageRepository struct {
	db *sql.DB
}

// NewPostgresMessageRepository creates a new PostgresMessageRepository
func NewPostgresMessageRepository(db *sql.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

// ListByPeriod retrieves every chat message created inside the period, oldest first
func (r *PostgresMessageRepository) ListByPeriod(ctx context.Context, period models.Period) ([]models.ChatMessage, error) {
	query := `
		SELECT name, content, create_at, channel, sender_role, sender_id
		FROM chat_messages
		WHERE EXTRACT(MONTH FROM create_at) = $1 AND EXTRACT(YEAR FROM create_at) = $2
		ORDER BY create_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, period.Month, period.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		err := rows.Scan(
			&msg.Name,
			&msg.Content,
			&msg.CreateAt,
			&msg.Channel,
			&msg.SenderRole,
			&msg.SenderID,
		)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return msgs, nil
}

// CreateBatch inserts multiple chat messages in a single transaction
func (r *PostgresMessageRepository) CreateBatch(ctx context.Context, msgs []models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chat_messages (name, content, create_at, channel, sender_role, sender_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range msgs {
		_, err := stmt.ExecContext(ctx,
			m.Name,
			m.Content,
			m.CreateAt,
			m.Channel,
			m.SenderRole,
			m.SenderID,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
