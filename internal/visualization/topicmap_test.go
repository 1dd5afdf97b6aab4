package visualization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todmy/topic-miner/pkg/models"
)

func term(cluster int, word string, score float64) models.TopicTerm {
	return models.TopicTerm{TopicCluster: cluster, Word: word, Score: score, MerchantName: "toko", Year: 2024, Month: 3}
}

func TestMapEmpty(t *testing.T) {
	points, err := Map(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, points)
	assert.NotNil(t, points)
}

func TestMapSingleTopic(t *testing.T) {
	points, err := Map([]models.TopicTerm{
		term(1, "kirim", 0.2),
		term(1, "ongkir", 0.5),
		term(1, "kurir", 0.2),
		term(1, "paket", 0.1),
	}, 3)
	require.NoError(t, err)
	require.Len(t, points, 1)

	p := points[0]
	assert.Equal(t, 1, p.TopicCluster)
	assert.Zero(t, p.X)
	assert.Zero(t, p.Y)
	assert.InDelta(t, 1.0, p.Weight, 1e-12)
	assert.Equal(t, []string{"ongkir", "kirim", "kurir"}, p.TopTerms)
}

func TestMapTwoTopicsSpanTheAxis(t *testing.T) {
	points, err := Map([]models.TopicTerm{
		term(2, "ukuran", 0.7),
		term(1, "ongkir", 0.6),
		term(2, "sepatu", 0.3),
		term(1, "kurir", 0.4),
	}, 0)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, 1, points[0].TopicCluster)
	assert.Equal(t, 2, points[1].TopicCluster)
	assert.InDelta(t, 1.0, math.Abs(points[0].X), 1e-9)
	assert.InDelta(t, -points[0].X, points[1].X, 1e-9)
	assert.Zero(t, points[0].Y)
	assert.Zero(t, points[1].Y)
}

func TestMapSharedVocabularyGroupsTopics(t *testing.T) {
	points, err := Map([]models.TopicTerm{
		term(1, "ongkir", 0.5),
		term(1, "kirim", 0.3),
		term(2, "ongkir", 0.4),
		term(2, "kirim", 0.35),
		term(3, "ukuran", 0.6),
		term(3, "sepatu", 0.3),
	}, 2)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, math.Signbit(points[0].X), math.Signbit(points[1].X))
	assert.NotEqual(t, math.Signbit(points[0].X), math.Signbit(points[2].X))
	assert.InDelta(t, 1.0, math.Abs(points[2].X), 1e-9)
}

func TestPCAReducerRejectsRaggedVectors(t *testing.T) {
	_, err := NewPCAReducer().Reduce([][]float64{{1, 2}, {3}}, 2)
	assert.Error(t, err)
}

func TestNormalizeCoordinates(t *testing.T) {
	got := normalizeCoordinates([][]float64{{0, 5}, {2, 5}, {4, 5}})
	assert.Equal(t, [][]float64{{-1, 0}, {0, 0}, {1, 0}}, got)
}
