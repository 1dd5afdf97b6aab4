package api

import (
	"net/http"
	"strconv"

	"github.com/todmy/topic-miner/internal/auth"
	"github.com/todmy/topic-miner/internal/visualization"
	"github.com/todmy/topic-miner/pkg/models"
)

// TermResponse is one word of a topic
type TermResponse struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// TopicResponse groups the words of one topic
type TopicResponse struct {
	TopicCluster int            `json:"topic_cluster"`
	Terms        []TermResponse `json:"terms"`
}

// TopicsResponse is the body of GET /api/v1/topics
type TopicsResponse struct {
	MerchantName string          `json:"merchant_name"`
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	Topics       []TopicResponse `json:"topics"`
}

// TopicMapResponse is the body of GET /api/v1/topics/map
type TopicMapResponse struct {
	MerchantName string                     `json:"merchant_name"`
	Year         int                        `json:"year"`
	Month        int                        `json:"month"`
	Method       string                     `json:"method"`
	Points       []visualization.TopicPoint `json:"points"`
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetTopics(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	period, ok := parsePeriod(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "year and month query parameters are required")
		return
	}

	terms, err := s.terms.GetByPeriod(r.Context(), claims.Merchant, period)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load topics")
		return
	}

	respondJSON(w, http.StatusOK, TopicsResponse{
		MerchantName: claims.Merchant,
		Year:         period.Year,
		Month:        period.Month,
		Topics:       groupTopics(terms),
	})
}

func (s *Server) handleGetTopicMap(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	period, ok := parsePeriod(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "year and month query parameters are required")
		return
	}

	labels := 0
	if v := r.URL.Query().Get("labels"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "labels must be a positive integer")
			return
		}
		labels = n
	}

	terms, err := s.terms.GetByPeriod(r.Context(), claims.Merchant, period)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load topics")
		return
	}

	points, err := visualization.Map(terms, labels)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to build topic map")
		return
	}

	respondJSON(w, http.StatusOK, TopicMapResponse{
		MerchantName: claims.Merchant,
		Year:         period.Year,
		Month:        period.Month,
		Method:       visualization.NewPCAReducer().Name(),
		Points:       points,
	})
}

func (s *Server) handleGetLatestRun(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	run, err := s.runs.GetLatest(r.Context(), claims.Merchant)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	if run == nil {
		respondError(w, http.StatusNotFound, "no run yet")
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// groupTopics folds rows ordered by topic cluster into one entry per topic
func groupTopics(terms []models.TopicTerm) []TopicResponse {
	topics := []TopicResponse{}
	for _, t := range terms {
		if n := len(topics); n == 0 || topics[n-1].TopicCluster != t.TopicCluster {
			topics = append(topics, TopicResponse{TopicCluster: t.TopicCluster})
		}
		last := &topics[len(topics)-1]
		last.Terms = append(last.Terms, TermResponse{Word: t.Word, Score: t.Score})
	}
	return topics
}

func parsePeriod(r *http.Request) (models.Period, bool) {
	year, errYear := strconv.Atoi(r.URL.Query().Get("year"))
	month, errMonth := strconv.Atoi(r.URL.Query().Get("month"))
	period := models.Period{Year: year, Month: month}
	return period, errYear == nil && errMonth == nil && period.Valid()
}
