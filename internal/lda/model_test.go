package lda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromLambda(t *testing.T) {
	m, err := FromLambda([][]float64{
		{1, 3, 6},
		{5, 4, 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, m.NumTopics())
	assert.Equal(t, 3, m.NumTerms())
	assert.Equal(t, []float64{0.5, 0.5}, m.Alpha())
	assert.Equal(t, 0.5, m.Eta())

	assert.InDeltaSlice(t, []float64{0.1, 0.3, 0.6}, m.Topic(0), 1e-12)
}

func TestFromLambdaInvalid(t *testing.T) {
	_, err := FromLambda(nil)
	assert.ErrorIs(t, err, ErrInvalidTopicCount)

	_, err = FromLambda([][]float64{{1, 2}, {1}})
	assert.Error(t, err)

	_, err = FromLambda([][]float64{{1, 0}})
	assert.Error(t, err)
}

func TestTopicTermsRanking(t *testing.T) {
	m, err := FromLambda([][]float64{{1, 3, 6, 2}})
	require.NoError(t, err)

	terms := m.TopicTerms(0, 2)
	require.Len(t, terms, 2)
	assert.Equal(t, 2, terms[0].ID)
	assert.InDelta(t, 0.5, terms[0].Weight, 1e-12)
	assert.Equal(t, 1, terms[1].ID)
	assert.InDelta(t, 0.25, terms[1].Weight, 1e-12)

	// topn larger than the vocabulary returns everything
	assert.Len(t, m.TopicTerms(0, 10), 4)
	assert.Len(t, m.TopicTerms(0, 0), 4)
}

func TestTopicTermsTiesByID(t *testing.T) {
	m, err := FromLambda([][]float64{{2, 2, 2}})
	require.NoError(t, err)

	terms := m.TopicTerms(0, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{terms[0].ID, terms[1].ID, terms[2].ID})
}

func TestTopicTermsUniqueIDs(t *testing.T) {
	m, err := FromLambda([][]float64{{5, 1, 4, 1, 3}})
	require.NoError(t, err)

	seen := make(map[int]bool)
	for _, tw := range m.TopicTerms(0, 5) {
		assert.False(t, seen[tw.ID])
		seen[tw.ID] = true
	}
}
