// Package corpus turns tokenized documents into the dictionary, bag-of-words and
// TF-IDF weighted representations consumed by topic training and scoring.
package corpus

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoData is returned when there are no documents to build a corpus from
var ErrNoData = errors.New("no data")

// ErrEmptyVocabulary is returned when documents exist but none of them holds a token
var ErrEmptyVocabulary = errors.New("documents contain no tokens")

// Document is an ordered sequence of normalized tokens
type Document []string

// Tokenize splits cleaned content on whitespace
func Tokenize(content string) Document {
	return Document(strings.Fields(content))
}

// BowEntry is one (token id, raw count) pair
type BowEntry struct {
	ID    int
	Count int
}

// BowVector is the sparse count representation of one document
type BowVector []BowEntry

// WeightedEntry is one (token id, weight) pair after TF-IDF reweighting
type WeightedEntry struct {
	ID     int
	Weight float64
}

// WeightedVector is a TF-IDF reweighted bag-of-words vector
type WeightedVector []WeightedEntry

// Corpus holds every representation of one batch of documents.
// It is built once per pipeline run and must be treated as read-only afterwards.
type Corpus struct {
	Documents  []Document
	Dictionary *Dictionary
	BoW        []BowVector
	Weighted   []WeightedVector
}

// Build creates the dictionary, the bag-of-words corpus and the TF-IDF weighted corpus
func Build(docs []Document) (*Corpus, error) {
	if len(docs) == 0 {
		return nil, ErrNoData
	}

	dict := NewDictionary(docs)
	if dict.Len() == 0 {
		return nil, fmt.Errorf("%w: %d documents", ErrEmptyVocabulary, len(docs))
	}

	bow := make([]BowVector, len(docs))
	for i, doc := range docs {
		bow[i] = dict.Doc2Bow(doc)
	}

	tfidf := NewTfidf(bow, dict.Len())

	return &Corpus{
		Documents:  docs,
		Dictionary: dict,
		BoW:        bow,
		Weighted:   tfidf.TransformAll(bow),
	}, nil
}

// NumDocs returns the number of documents in the corpus
func (c *Corpus) NumDocs() int {
	return len(c.Documents)
}

// NumTerms returns the vocabulary size
func (c *Corpus) NumTerms() int {
	return c.Dictionary.Len()
}
