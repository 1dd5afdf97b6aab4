// Package source reads the chat messages of one month from a CSV export or PostgreSQL.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/todmy/topic-miner/internal/storage"
	"github.com/todmy/topic-miner/pkg/models"
)

// Source provides the chat history of a period
type Source interface {
	Messages(ctx context.Context, month, year int) ([]models.ChatMessage, error)
}

// ErrMalformedRecord is returned for a CSV row that cannot be read as a chat message
var ErrMalformedRecord = errors.New("malformed chat record")

// csvColumns is the number of leading columns a chat export must have
const csvColumns = 6

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CSVSource reads a chat export with a header row followed by
// name, content, create_at, channel, sender_role, sender_id columns
type CSVSource struct {
	path         string
	filterPeriod bool
}

// NewCSVSource creates a CSV source. With filterPeriod set only rows created in the
// requested month are returned, otherwise the whole file is.
func NewCSVSource(path string, filterPeriod bool) *CSVSource {
	return &CSVSource{path: path, filterPeriod: filterPeriod}
}

// Messages reads the export file
func (s *CSVSource) Messages(ctx context.Context, month, year int) ([]models.ChatMessage, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening chat export: %w", err)
	}
	defer f.Close()

	msgs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	if !s.filterPeriod {
		return msgs, nil
	}

	period := models.Period{Year: year, Month: month}
	filtered := msgs[:0]
	for _, m := range msgs {
		if period.Contains(m.CreateAt) {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

// ReadCSV parses chat messages from r. The first row is a header and is skipped.
// Extra trailing columns are ignored.
func ReadCSV(r io.Reader) ([]models.ChatMessage, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var msgs []models.ChatMessage
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 {
			continue
		}
		if len(record) < csvColumns {
			return nil, fmt.Errorf("%w: line %d has %d columns, want %d", ErrMalformedRecord, line, len(record), csvColumns)
		}

		createAt, err := parseTime(record[2])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRecord, line, err)
		}

		msgs = append(msgs, models.ChatMessage{
			Name:       strings.TrimSpace(record[0]),
			Content:    record[1],
			CreateAt:   createAt,
			Channel:    strings.TrimSpace(record[3]),
			SenderRole: strings.TrimSpace(record[4]),
			SenderID:   strings.TrimSpace(record[5]),
		})
	}
	return msgs, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// PostgresSource reads chat messages from the chat_messages table
type PostgresSource struct {
	repo storage.MessageRepository
}

// NewPostgresSource creates a source over a message repository
func NewPostgresSource(repo storage.MessageRepository) *PostgresSource {
	return &PostgresSource{repo: repo}
}

// Messages returns the period's messages ordered by creation time
func (s *PostgresSource) Messages(ctx context.Context, month, year int) ([]models.ChatMessage, error) {
	msgs, err := s.repo.ListByPeriod(ctx, models.Period{Year: year, Month: month})
	if err != nil {
		return nil, fmt.Errorf("listing chat messages: %w", err)
	}
	return msgs, nil
}
