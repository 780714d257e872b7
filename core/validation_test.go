package core

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func TestValidateThought(t *testing.T) {
	valid := func() *Thought {
		return &Thought{
			UserID:        "user-1",
			RawTranscript: "buy milk tomorrow",
			Type:          ThoughtTypeTask,
			Priority:      3,
			Status:        StatusActive,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Thought)
		wantErr error
	}{
		{name: "valid thought", mutate: func(*Thought) {}, wantErr: nil},
		{name: "cleaned text only", mutate: func(th *Thought) { th.RawTranscript = ""; th.CleanedText = "milk" }, wantErr: nil},
		{name: "empty type allowed", mutate: func(th *Thought) { th.Type = "" }, wantErr: nil},
		{name: "missing user", mutate: func(th *Thought) { th.UserID = "" }, wantErr: ErrEmptyUser},
		{name: "blank text", mutate: func(th *Thought) { th.RawTranscript = "   " }, wantErr: ErrEmptyContent},
		{name: "unknown type", mutate: func(th *Thought) { th.Type = "shopping" }, wantErr: ErrInvalidThoughtType},
		{name: "priority too low", mutate: func(th *Thought) { th.Priority = 0 }, wantErr: ErrInvalidPriority},
		{name: "priority too high", mutate: func(th *Thought) { th.Priority = 6 }, wantErr: ErrInvalidPriority},
		{name: "unknown status", mutate: func(th *Thought) { th.Status = "deleted" }, wantErr: ErrInvalidStatus},
		{name: "sentiment out of range", mutate: func(th *Thought) { th.Sentiment = ptr(1.5) }, wantErr: ErrInvalidSentiment},
		{name: "sentiment in range", mutate: func(th *Thought) { th.Sentiment = ptr(-0.4) }, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thought := valid()
			tt.mutate(thought)
			err := ValidateThought(thought)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateThought() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateThought() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidThought) {
				t.Errorf("ValidateThought() error should wrap ErrInvalidThought")
			}
		})
	}

	t.Run("nil thought", func(t *testing.T) {
		if err := ValidateThought(nil); !errors.Is(err, ErrInvalidThought) {
			t.Errorf("ValidateThought(nil) error = %v, want %v", err, ErrInvalidThought)
		}
	})
}

func TestValidateConnection(t *testing.T) {
	tests := []struct {
		name    string
		conn    *Connection
		wantErr error
	}{
		{name: "valid", conn: &Connection{ThoughtA: 1, ThoughtB: 2, UserID: "u", Similarity: 0.9}, wantErr: nil},
		{name: "self edge", conn: &Connection{ThoughtA: 2, ThoughtB: 2, UserID: "u", Similarity: 0.9}, wantErr: ErrSelfConnection},
		{name: "reversed", conn: &Connection{ThoughtA: 3, ThoughtB: 2, UserID: "u", Similarity: 0.9}, wantErr: ErrNonCanonicalPair},
		{name: "similarity above one", conn: &Connection{ThoughtA: 1, ThoughtB: 2, UserID: "u", Similarity: 1.2}, wantErr: ErrInvalidSimilarity},
		{name: "missing user", conn: &Connection{ThoughtA: 1, ThoughtB: 2, Similarity: 0.9}, wantErr: ErrEmptyUser},
		{name: "nil", conn: nil, wantErr: ErrInvalidConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConnection(tt.conn)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateConnection() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateConnection() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilters(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		filters *SearchFilters
		wantErr bool
	}{
		{name: "nil", filters: nil, wantErr: false},
		{name: "empty", filters: &SearchFilters{}, wantErr: false},
		{name: "bad type", filters: &SearchFilters{Type: "shopping"}, wantErr: true},
		{name: "bad status", filters: &SearchFilters{Status: "gone"}, wantErr: true},
		{name: "bad priority", filters: &SearchFilters{Priority: 9}, wantErr: true},
		{name: "inverted range", filters: &SearchFilters{From: now, To: now.Add(-time.Hour)}, wantErr: true},
		{name: "valid range", filters: &SearchFilters{From: now.Add(-time.Hour), To: now}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilters(tt.filters)
			if tt.wantErr && !errors.Is(err, ErrInvalidFilters) {
				t.Errorf("ValidateFilters() error = %v, want %v", err, ErrInvalidFilters)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateFilters() error = %v, want nil", err)
			}
		})
	}
}

func TestParseThoughtType(t *testing.T) {
	tests := []struct {
		in   string
		want ThoughtType
	}{
		{in: "task", want: ThoughtTypeTask},
		{in: " Reminder ", want: ThoughtTypeReminder},
		{in: "journal", want: ThoughtTypeJournal},
		{in: "shopping", want: ThoughtTypeNote},
		{in: "", want: ThoughtTypeNote},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseThoughtType(tt.in); got != tt.want {
				t.Errorf("ParseThoughtType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClampPriority(t *testing.T) {
	for in, want := range map[float64]int{-1e20: 1, -3: 1, 0.4: 1, 1: 1, 2.5: 3, 3: 3, 4.6: 5, 5: 5, 6: 5, 1e20: 5} {
		if got := ClampPriority(in); got != want {
			t.Errorf("ClampPriority(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestClampUnit(t *testing.T) {
	if got := ClampUnit(1.7, -1, 1); got != 1 {
		t.Errorf("ClampUnit(1.7) = %v, want 1", got)
	}
	if got := ClampUnit(-2, -1, 1); got != -1 {
		t.Errorf("ClampUnit(-2) = %v, want -1", got)
	}
	if got := ClampUnit(0.25, -1, 1); got != 0.25 {
		t.Errorf("ClampUnit(0.25) = %v, want 0.25", got)
	}
}

func TestNormalizeLabels(t *testing.T) {
	got := NormalizeLabels([]string{" work ", "", "health", "work", "  "})
	want := []string{"work", "health"}
	if !slices.Equal(got, want) {
		t.Errorf("NormalizeLabels() = %v, want %v", got, want)
	}
}

func TestParseDeadline(t *testing.T) {
	tests := []struct {
		in     string
		want   time.Time
		wantOK bool
	}{
		{in: "2026-10-16T09:30:00+02:00", want: time.Date(2026, 10, 16, 7, 30, 0, 0, time.UTC), wantOK: true},
		{in: "2026-10-16T09:30:00", want: time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC), wantOK: true},
		{in: " 2026-10-16 ", want: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), wantOK: true},
		{in: "next friday", wantOK: false},
		{in: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDeadline(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseDeadline(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDeadline(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
