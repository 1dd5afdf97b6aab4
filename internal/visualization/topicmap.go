// Package visualization lays persisted topics out on a plane so that topics
// sharing vocabulary land close together.
package visualization

import (
	"fmt"
	"sort"

	"github.com/todmy/topic-miner/pkg/models"
)

// DefaultTopTerms is the number of labels kept per point
const DefaultTopTerms = 3

// TopicPoint is one topic on the map
type TopicPoint struct {
	TopicCluster int      `json:"topic_cluster"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	Weight       float64  `json:"weight"` // sum of the stored term scores
	TopTerms     []string `json:"top_terms"`
}

// Map projects each topic's word-score vector onto its first two principal
// components. Terms of the same topic may arrive in any order.
func Map(terms []models.TopicTerm, topTerms int) ([]TopicPoint, error) {
	if topTerms <= 0 {
		topTerms = DefaultTopTerms
	}

	byTopic := make(map[int][]models.TopicTerm)
	vocab := make(map[string]int)
	for _, t := range terms {
		byTopic[t.TopicCluster] = append(byTopic[t.TopicCluster], t)
		if _, ok := vocab[t.Word]; !ok {
			vocab[t.Word] = len(vocab)
		}
	}
	if len(byTopic) == 0 {
		return []TopicPoint{}, nil
	}

	clusters := make([]int, 0, len(byTopic))
	for c := range byTopic {
		clusters = append(clusters, c)
	}
	sort.Ints(clusters)

	vectors := make([][]float64, len(clusters))
	points := make([]TopicPoint, len(clusters))
	for i, c := range clusters {
		ts := byTopic[c]
		sort.Slice(ts, func(a, b int) bool {
			if ts[a].Score != ts[b].Score {
				return ts[a].Score > ts[b].Score
			}
			return ts[a].Word < ts[b].Word
		})

		vec := make([]float64, len(vocab))
		p := TopicPoint{TopicCluster: c, TopTerms: []string{}}
		for _, t := range ts {
			vec[vocab[t.Word]] += t.Score
			p.Weight += t.Score
			if len(p.TopTerms) < topTerms {
				p.TopTerms = append(p.TopTerms, t.Word)
			}
		}
		vectors[i] = vec
		points[i] = p
	}

	coords, err := NewPCAReducer().Reduce(vectors, 2)
	if err != nil {
		return nil, fmt.Errorf("reduce topics: %w", err)
	}
	for i, coord := range coords {
		points[i].X = coord[0]
		if len(coord) > 1 {
			points[i].Y = coord[1]
		}
	}

	return points, nil
}
