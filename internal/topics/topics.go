// Package topics resolves the term weights of a selected model into words.
package topics

import (
	"github.com/todmy/topic-miner/internal/corpus"
	"github.com/todmy/topic-miner/internal/lda"
)

// DefaultTopN is the number of words extracted per topic
const DefaultTopN = 10

// Term is one word of a topic with its weight
type Term struct {
	Word   string  `json:"word"`
	Weight float64 `json:"weight"`
}

// TopicTerms holds the top words of one topic.
// Ranked keeps the model's order, Terms is the same data keyed by word.
type TopicTerms struct {
	Terms  map[string]float64 `json:"terms"`
	Ranked []Term             `json:"ranked"`
}

// Model is the part of a trained model the extractor reads
type Model interface {
	NumTopics() int
	TopicTerms(topic, topn int) []lda.TermWeight
}

// Extract returns one TopicTerms per topic in the model's native topic order.
// Weights are passed through without re-normalization. A topn of zero or less uses DefaultTopN.
func Extract(model Model, dict *corpus.Dictionary, topn int) []TopicTerms {
	if topn <= 0 {
		topn = DefaultTopN
	}

	out := make([]TopicTerms, model.NumTopics())
	for t := range out {
		weights := model.TopicTerms(t, topn)
		tt := TopicTerms{
			Terms:  make(map[string]float64, len(weights)),
			Ranked: make([]Term, 0, len(weights)),
		}
		for _, tw := range weights {
			word := dict.Token(tw.ID)
			tt.Terms[word] = tw.Weight
			tt.Ranked = append(tt.Ranked, Term{Word: word, Weight: tw.Weight})
		}
		out[t] = tt
	}
	return out
}
