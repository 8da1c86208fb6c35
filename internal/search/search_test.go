package search

import (
	"reflect"
	"testing"

	"github.com/mmcdole/twitchpanel/internal/domain"
)

var directory = []domain.StreamInfo{
	{StreamerID: "1", DisplayName: "Shroud", Login: "shroud", GameName: "VALORANT"},
	{StreamerID: "2", DisplayName: "xQc", Login: "xqcow", GameName: "Just Chatting", Title: "news"},
	{StreamerID: "3", DisplayName: "Pokimane", Login: "pokimane", GameName: "Just Chatting"},
	{StreamerID: "4", DisplayName: "김덕배", Login: "kimdb", GameName: "Minecraft"},
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		want   []int
		fields []Field
	}{
		{name: "empty", query: "  ", want: nil},
		{name: "name prefix", query: "SHR", want: []int{0}, fields: []Field{FieldName}},
		{name: "login only", query: "xqcow", want: []int{1}, fields: []Field{FieldName}},
		{name: "game words", query: "just chat", want: []int{1, 2}, fields: []Field{FieldGame, FieldGame}},
		{name: "names before logins", query: "kim", want: []int{2, 3}, fields: []Field{FieldName, FieldName}},
		{name: "no match", query: "zzz", want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := Filter(tt.query, directory)
			if tt.want == nil {
				if matches != nil {
					t.Errorf("Filter(%q) = %v, want nil", tt.query, matches)
				}
				return
			}
			if got := Indexes(matches); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Filter(%q) = %v, want %v", tt.query, got, tt.want)
			}
			for i, f := range tt.fields {
				if matches[i].Field != f {
					t.Errorf("match %d field = %v, want %v", i, matches[i].Field, f)
				}
			}
		})
	}
}

func TestFilterHighlightsName(t *testing.T) {
	matches := Filter("shr", directory)
	if len(matches) != 1 {
		t.Fatalf("matches = %v", matches)
	}
	if want := []int{0, 1, 2}; !reflect.DeepEqual(matches[0].MatchedIndexes, want) {
		t.Errorf("MatchedIndexes = %v, want %v", matches[0].MatchedIndexes, want)
	}
}
