package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todmy/topic-miner/pkg/models"
)

const export = `name,content,create_at,channel,sender_role,sender_id
toko-sepatu,"Ukuran 42 ready, kak?",2024-03-02 09:30:00,whatsapp,buyer,u1
toko-sepatu,Ready kak,2024-03-02T09:31:00Z,whatsapp,seller,s1
toko-sepatu,Ongkir ke Bandung berapa?,2024-04-01,instagram,buyer,u2
`

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	msgs, err := ReadCSV(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, models.ChatMessage{
		Name:       "toko-sepatu",
		Content:    "Ukuran 42 ready, kak?",
		CreateAt:   time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC),
		Channel:    "whatsapp",
		SenderRole: "buyer",
		SenderID:   "u1",
	}, msgs[0])
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), msgs[2].CreateAt)
}

func TestReadCSVHeaderOnly(t *testing.T) {
	msgs, err := ReadCSV(strings.NewReader("name,content,create_at,channel,sender_role,sender_id\n"))
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestReadCSVMalformed(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("header\ntoko,halo,2024-03-01\n"))
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = ReadCSV(strings.NewReader("header\ntoko,halo,yesterday,wa,buyer,u1\n"))
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestCSVSourceReturnsWholeFile(t *testing.T) {
	src := NewCSVSource(writeExport(t, export), false)

	msgs, err := src.Messages(context.Background(), 3, 2024)
	require.NoError(t, err)
	assert.Len(t, msgs, 3)
}

func TestCSVSourceFiltersPeriod(t *testing.T) {
	src := NewCSVSource(writeExport(t, export), true)

	msgs, err := src.Messages(context.Background(), 3, 2024)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Ready kak", msgs[1].Content)

	msgs, err = src.Messages(context.Background(), 5, 2024)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestCSVSourceMissingFile(t *testing.T) {
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "missing.csv"), false).Messages(context.Background(), 3, 2024)
	assert.Error(t, err)
}

type fakeMessages struct {
	period models.Period
	msgs   []models.ChatMessage
	err    error
}

func (f *fakeMessages) ListByPeriod(ctx context.Context, period models.Period) ([]models.ChatMessage, error) {
	f.period = period
	return f.msgs, f.err
}

func (f *fakeMessages) CreateBatch(ctx context.Context, msgs []models.ChatMessage) error {
	return nil
}

func TestPostgresSource(t *testing.T) {
	repo := &fakeMessages{msgs: []models.ChatMessage{{Name: "toko", Content: "halo"}}}

	msgs, err := NewPostgresSource(repo).Messages(context.Background(), 3, 2024)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.Equal(t, models.Period{Year: 2024, Month: 3}, repo.period)

	repo.err = errors.New("connection refused")
	_, err = NewPostgresSource(repo).Messages(context.Background(), 3, 2024)
	assert.ErrorIs(t, err, repo.err)
}
