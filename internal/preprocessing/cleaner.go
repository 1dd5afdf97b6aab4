// Package preprocessing normalizes raw chat content into whitespace-separated tokens.
package preprocessing

import (
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/todmy/topic-miner/pkg/models"
)

var (
	urlPattern     = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	emailPattern   = regexp.MustCompile(`\S+@\S+\.\S+`)
	mentionPattern = regexp.MustCompile(`@\w+`)
	htmlPattern    = regexp.MustCompile(`<[^>]*>`)
)

// Config holds cleaner settings
type Config struct {
	MinTokenLength int
	StoplistPath   string // optional YAML file with extra stopwords
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{MinTokenLength: 2}
}

// Cleaner normalizes message content
type Cleaner struct {
	stopWords map[string]bool
	minLength int
	logger    *slog.Logger
}

// NewCleaner creates a cleaner with the built-in stopwords plus the optional stoplist file
func NewCleaner(config Config, logger *slog.Logger) (*Cleaner, error) {
	if config.MinTokenLength <= 0 {
		config.MinTokenLength = DefaultConfig().MinTokenLength
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	stopWords := defaultStopWords()
	if config.StoplistPath != "" {
		sl, err := LoadStoplist(config.StoplistPath)
		if err != nil {
			return nil, err
		}
		for _, term := range sl.Terms {
			stopWords[term] = true
		}
		logger.Debug("stoplist loaded", "path", config.StoplistPath, "terms", len(sl.Terms))
	}

	return &Cleaner{
		stopWords: stopWords,
		minLength: config.MinTokenLength,
		logger:    logger,
	}, nil
}

// Clean returns copies of the messages with normalized content. Messages whose
// content is empty after cleaning are dropped; every other field is kept as is.
func (c *Cleaner) Clean(msgs []models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, len(msgs))
	for _, msg := range msgs {
		msg.Content = c.CleanText(msg.Content)
		if msg.Content == "" {
			continue
		}
		out = append(out, msg)
	}

	c.logger.Debug("messages cleaned", "in", len(msgs), "out", len(out))
	return out
}

// CleanText lowercases text, strips markup and noise and joins the remaining tokens with single spaces
func (c *Cleaner) CleanText(text string) string {
	text = htmlPattern.ReplaceAllString(text, " ")
	text = urlPattern.ReplaceAllString(text, " ")
	text = emailPattern.ReplaceAllString(text, " ")
	text = mentionPattern.ReplaceAllString(text, " ")
	text = strings.ToLower(text)

	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	result := make([]string, 0, len(words))
	for _, word := range words {
		if utf8.RuneCountInString(word) >= c.minLength && !c.stopWords[word] {
			result = append(result, word)
		}
	}
	return strings.Join(result, " ")
}
