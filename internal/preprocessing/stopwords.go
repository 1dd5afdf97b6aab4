package preprocessing

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stoplist is the YAML layout of an extra stopword file
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("parse stoplist %s: %w", path, err)
	}

	for i, term := range sl.Terms {
		sl.Terms[i] = strings.ToLower(strings.TrimSpace(term))
	}
	return &sl, nil
}

func defaultStopWords() map[string]bool {
	english := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"has", "have", "he", "in", "is", "it", "its", "of", "on", "or",
		"she", "that", "the", "they", "this", "to", "was", "were", "will",
		"with", "you", "your", "we", "our", "their", "them", "there", "these",
		"those", "been", "being", "had", "having", "do", "does", "did", "doing",
		"would", "could", "should", "may", "might", "must", "can", "cannot",
		"about", "above", "after", "again", "against", "all", "am", "any",
		"because", "before", "below", "between", "both", "but", "during",
		"each", "few", "further", "here", "how", "if", "into", "just", "more",
		"most", "no", "nor", "not", "now", "only", "other", "out", "own",
		"same", "so", "some", "such", "than", "then", "through", "too", "under",
		"until", "up", "very", "what", "when", "where", "which", "while", "who",
		"whom", "why", "also", "however", "yet", "me", "my", "i", "ok", "okay",
		"please", "thanks", "thank", "hi", "hello",
	}

	// chat filler common in Indonesian merchant conversations
	indonesian := []string{
		"yang", "dan", "di", "ke", "dari", "ini", "itu", "untuk", "dengan",
		"ada", "tidak", "tak", "ga", "gak", "nggak", "enggak", "ya", "iya",
		"yah", "sudah", "udah", "belum", "blm", "bisa", "akan", "juga",
		"saya", "aku", "kamu", "anda", "kak", "kakak", "gan", "sis", "min",
		"admin", "mas", "mbak", "bang", "pak", "bu", "apa", "apakah", "kalau",
		"kalo", "kok", "sih", "deh", "dong", "nih", "tuh", "lah", "kah",
		"pun", "saja", "aja", "lagi", "masih", "mau", "atau", "karena",
		"jadi", "tapi", "tetapi", "sama", "pada", "oleh", "seperti", "dalam",
		"halo", "hai", "terima", "kasih", "makasih", "trims", "selamat",
		"pagi", "siang", "sore", "malam", "baik", "oke", "sip", "mohon",
	}

	result := make(map[string]bool, len(english)+len(indonesian))
	for _, w := range english {
		result[w] = true
	}
	for _, w := range indonesian {
		result[w] = true
	}
	return result
}
