package corpus

import "sort"

// Dictionary maps tokens to stable integer ids.
// Ids are dense, start at 0 and follow the order in which tokens were first seen.
type Dictionary struct {
	token2id map[string]int
	id2token []string
	docFreq  []int
	numDocs  int
}

// NewDictionary builds a dictionary by scanning every token of every document once
func NewDictionary(docs []Document) *Dictionary {
	d := &Dictionary{token2id: make(map[string]int)}
	for _, doc := range docs {
		d.numDocs++
		seen := make(map[int]bool, len(doc))
		for _, token := range doc {
			id, ok := d.token2id[token]
			if !ok {
				id = len(d.id2token)
				d.token2id[token] = id
				d.id2token = append(d.id2token, token)
				d.docFreq = append(d.docFreq, 0)
			}
			if !seen[id] {
				d.docFreq[id]++
				seen[id] = true
			}
		}
	}
	return d
}

// Len returns the number of distinct tokens
func (d *Dictionary) Len() int {
	return len(d.id2token)
}

// NumDocs returns the number of documents the dictionary was built from
func (d *Dictionary) NumDocs() int {
	return d.numDocs
}

// ID returns the id of a token
func (d *Dictionary) ID(token string) (int, bool) {
	id, ok := d.token2id[token]
	return id, ok
}

// Token returns the token for an id, or "" when the id is unknown
func (d *Dictionary) Token(id int) string {
	if id < 0 || id >= len(d.id2token) {
		return ""
	}
	return d.id2token[id]
}

// DocFreq returns the number of documents containing the token id
func (d *Dictionary) DocFreq(id int) int {
	if id < 0 || id >= len(d.docFreq) {
		return 0
	}
	return d.docFreq[id]
}

// Tokens returns a copy of all tokens ordered by id
func (d *Dictionary) Tokens() []string {
	out := make([]string, len(d.id2token))
	copy(out, d.id2token)
	return out
}

// Doc2Bow converts a document into a bag-of-words vector ordered by token id.
// Tokens missing from the dictionary are ignored.
func (d *Dictionary) Doc2Bow(doc Document) BowVector {
	counts := make(map[int]int, len(doc))
	order := make([]int, 0, len(doc))
	for _, token := range doc {
		id, ok := d.token2id[token]
		if !ok {
			continue
		}
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}

	sort.Ints(order)
	vec := make(BowVector, len(order))
	for i, id := range order {
		vec[i] = BowEntry{ID: id, Count: counts[id]}
	}
	return vec
}

// DocIDs maps a document to token ids, keeping position and dropping unknown tokens
func (d *Dictionary) DocIDs(doc Document) []int {
	ids := make([]int, 0, len(doc))
	for _, token := range doc {
		if id, ok := d.token2id[token]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
