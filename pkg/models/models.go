package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage represents one raw chat record of a merchant conversation
type ChatMessage struct {
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	CreateAt   time.Time `json:"create_at"`
	Channel    string    `json:"channel"`
	SenderRole string    `json:"sender_role"`
	SenderID   string    `json:"sender_id"`
}

// TopicTerm is the persisted output unit: one word of one topic for a merchant period
type TopicTerm struct {
	TopicCluster int     `json:"topic_cluster"` // 1-based
	Word         string  `json:"word"`
	Score        float64 `json:"score"`
	MerchantName string  `json:"merchant_name"`
	Year         int     `json:"year"`
	Month        int     `json:"month"`
}

// Run summarizes one pipeline invocation that produced a selected model
type Run struct {
	ID              uuid.UUID `json:"id"`
	MerchantName    string    `json:"merchant_name"`
	Year            int       `json:"year"`
	Month           int       `json:"month"`
	NumTopics       int       `json:"num_topics"`
	Coherence       float64   `json:"coherence"`
	EvaluatedTopics []int     `json:"evaluated_topics"` // k of every candidate that produced a score
	CoherenceScores []float32 `json:"coherence_scores"` // aligned with EvaluatedTopics
	Documents       int       `json:"documents"`
	Vocabulary      int       `json:"vocabulary"`
	CreatedAt       time.Time `json:"created_at"`
}

// Period identifies the month a job mines
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// PeriodOf returns the period containing t
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// Contains reports whether t falls inside the period
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

// Valid reports whether the period names a real month
func (p Period) Valid() bool {
	return p.Year > 0 && p.Month >= 1 && p.Month <= 12
}
