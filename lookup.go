package geolookup

import (
	"strings"
)

// DefaultLimit is the number of results returned when no limit is given.
const DefaultLimit = 10

// Result is one lookup match.
type Result struct {
	Key     string `json:"key"`
	Type    Kind   `json:"type"`
	Path    string `json:"path"`
	Payload Record `json:"payload"`
}

// Tokenize splits a free-text query into lowercase tokens. Commas are
// dropped, so "Springfield, IL" and "springfield il" tokenize the same.
func Tokenize(query string) []string {
	query = strings.ReplaceAll(query, ",", "")
	tokens := strings.Fields(query)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}
	return tokens
}

// matches reports whether every token is a substring of key.
func matches(key string, tokens []string) bool {
	for _, t := range tokens {
		if !strings.Contains(key, t) {
			return false
		}
	}
	return true
}

// Lookup returns up to limit entries, in index order, whose search key
// contains every query token. A limit <= 0 means DefaultLimit. An empty
// query matches every entry.
func (idx *Index) Lookup(query string, limit int) []Result {
	if limit <= 0 {
		limit = DefaultLimit
	}
	results := []Result{}
	if idx == nil {
		return results
	}

	tokens := Tokenize(query)
	for i := range idx.entries {
		if len(results) >= limit {
			break
		}
		e := &idx.entries[i]
		if !matches(e.SearchKey, tokens) {
			continue
		}
		results = append(results, Result{
			Key:     e.Name,
			Type:    e.Kind,
			Path:    e.DisplayPath,
			Payload: e.Record,
		})
	}
	return results
}
