// Package search filters the stream directory as the user types.
package search

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/twitchpanel/internal/domain"
	sfuzzy "github.com/sahilm/fuzzy"
)

// Field identifies which part of a stream matched
type Field int

const (
	FieldName Field = iota // display name or login
	FieldGame              // game or title
)

// Match is one filtered stream
type Match struct {
	Index          int   // Index in the directory
	Field          Field // What matched
	MatchedIndexes []int // Character positions in the name, for highlighting
	Score          int   // Higher is better; game/title matches have none
}

// nameIndex implements sahilm/fuzzy.Source over lowercase names
type nameIndex struct {
	names []string
}

func (idx nameIndex) String(i int) string { return idx.names[i] }

func (idx nameIndex) Len() int { return len(idx.names) }

// Filter ranks streams against query. Name matches come first, best first;
// streams matched by login, game or title follow in directory order.
// An empty query returns nil, meaning no filter.
func Filter(query string, streams []domain.StreamInfo) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	lowerQuery := strings.ToLower(query)

	idx := nameIndex{names: make([]string, len(streams))}
	for i, s := range streams {
		idx.names[i] = strings.ToLower(s.Name())
	}

	var matches []Match
	seen := make(map[int]bool)
	for _, m := range sfuzzy.FindFrom(lowerQuery, idx) {
		matches = append(matches, Match{
			Index:          m.Index,
			Field:          FieldName,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		})
		seen[m.Index] = true
	}

	for i, s := range streams {
		if seen[i] {
			continue
		}
		// Login differs from the display name for localized names
		if fuzzy.MatchNormalizedFold(query, s.Login) {
			matches = append(matches, Match{Index: i, Field: FieldName})
			continue
		}
		if matchesWords(query, s.GameName) || matchesWords(query, s.Title) {
			matches = append(matches, Match{Index: i, Field: FieldGame})
		}
	}
	return matches
}

// matchesWords reports whether every word of query fuzzily matches text,
// ignoring case and diacritics
func matchesWords(query, text string) bool {
	if text == "" {
		return false
	}
	for _, word := range strings.Fields(query) {
		if !fuzzy.MatchNormalizedFold(word, text) {
			return false
		}
	}
	return true
}

// Indexes returns the directory indexes of matches, in match order
func Indexes(matches []Match) []int {
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.Index
	}
	return out
}
