package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todmy/topic-miner/internal/corpus"
	"github.com/todmy/topic-miner/internal/lda"
)

func TestExtract(t *testing.T) {
	c, err := corpus.Build([]corpus.Document{
		{"ongkir", "kirim", "ukuran"},
		{"sepatu", "ukuran"},
	})
	require.NoError(t, err)

	m, err := lda.FromLambda([][]float64{
		{6, 3, 1, 0.5},
		{0.5, 1, 3, 6},
	})
	require.NoError(t, err)

	got := Extract(m, c.Dictionary, 2)
	require.Len(t, got, 2)

	assert.Equal(t, []Term{
		{Word: "ongkir", Weight: m.Topic(0)[0]},
		{Word: "kirim", Weight: m.Topic(0)[1]},
	}, got[0].Ranked)
	assert.Equal(t, []Term{
		{Word: "sepatu", Weight: m.Topic(1)[3]},
		{Word: "ukuran", Weight: m.Topic(1)[2]},
	}, got[1].Ranked)

	assert.Len(t, got[0].Terms, 2)
	assert.Equal(t, m.Topic(0)[0], got[0].Terms["ongkir"])
}

func TestExtractDefaultTopN(t *testing.T) {
	docs := []corpus.Document{make(corpus.Document, 0, 12)}
	lambda := [][]float64{make([]float64, 12)}
	for i := 0; i < 12; i++ {
		docs[0] = append(docs[0], string(rune('a'+i)))
		lambda[0][i] = float64(i + 1)
	}
	c, err := corpus.Build(docs)
	require.NoError(t, err)
	m, err := lda.FromLambda(lambda)
	require.NoError(t, err)

	got := Extract(m, c.Dictionary, 0)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Ranked, DefaultTopN)
	assert.Equal(t, "l", got[0].Ranked[0].Word)
}

func TestExtractSmallVocabulary(t *testing.T) {
	c, err := corpus.Build([]corpus.Document{{"halo", "kak"}})
	require.NoError(t, err)
	m, err := lda.FromLambda([][]float64{{1, 2}})
	require.NoError(t, err)

	got := Extract(m, c.Dictionary, 10)
	assert.Len(t, got[0].Ranked, 2)
	assert.InDelta(t, 1.0, got[0].Terms["halo"]+got[0].Terms["kak"], 1e-12)
}
