package core

import (
	"testing"
	"time"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "simple content", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)
			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestUserKey(t *testing.T) {
	if UserKey("alice") != UserKey("alice") {
		t.Error("UserKey() is not deterministic")
	}
	if UserKey("alice") == UserKey("bob") {
		t.Error("UserKey() produced same key for different users")
	}
}

func TestCanonicalPair(t *testing.T) {
	tests := []struct {
		name  string
		a, b  ID
		wantA ID
		wantB ID
	}{
		{name: "already ordered", a: 3, b: 9, wantA: 3, wantB: 9},
		{name: "reversed", a: 9, b: 3, wantA: 3, wantB: 9},
		{name: "equal", a: 4, b: 4, wantA: 4, wantB: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotA, gotB := CanonicalPair(tt.a, tt.b)
			if gotA != tt.wantA || gotB != tt.wantB {
				t.Errorf("CanonicalPair(%d, %d) = (%d, %d), want (%d, %d)", tt.a, tt.b, gotA, gotB, tt.wantA, tt.wantB)
			}
		})
	}
}

func TestConnection_Other(t *testing.T) {
	c := &Connection{ThoughtA: 1, ThoughtB: 2}
	if c.Other(1) != 2 || c.Other(2) != 1 {
		t.Errorf("Other() returned wrong endpoint")
	}
}

func TestSearchFilters_Matches(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	thought := &Thought{
		Type:       ThoughtTypeTask,
		Priority:   4,
		Categories: []string{"work", "health"},
		Status:     StatusActive,
		CreatedAt:  created,
	}

	tests := []struct {
		name    string
		filters *SearchFilters
		want    bool
	}{
		{name: "nil filters", filters: nil, want: true},
		{name: "empty filters", filters: &SearchFilters{}, want: true},
		{name: "matching type", filters: &SearchFilters{Type: ThoughtTypeTask}, want: true},
		{name: "other type", filters: &SearchFilters{Type: ThoughtTypeIdea}, want: false},
		{name: "matching priority", filters: &SearchFilters{Priority: 4}, want: true},
		{name: "other priority", filters: &SearchFilters{Priority: 2}, want: false},
		{name: "category member", filters: &SearchFilters{Category: "health"}, want: true},
		{name: "category not member", filters: &SearchFilters{Category: "travel"}, want: false},
		{name: "matching status", filters: &SearchFilters{Status: StatusActive}, want: true},
		{name: "other status", filters: &SearchFilters{Status: StatusDone}, want: false},
		{name: "inclusive lower bound", filters: &SearchFilters{From: created}, want: true},
		{name: "inclusive upper bound", filters: &SearchFilters{To: created}, want: true},
		{name: "after range", filters: &SearchFilters{To: created.Add(-time.Hour)}, want: false},
		{name: "before range", filters: &SearchFilters{From: created.Add(time.Hour)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filters.Matches(thought); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestThought_HasCategory(t *testing.T) {
	thought := &Thought{Categories: []string{"work"}}
	if !thought.HasCategory("work") {
		t.Error("HasCategory(work) = false, want true")
	}
	if thought.HasCategory("Work") {
		t.Error("HasCategory is expected to be case sensitive")
	}
}
