package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/noesis/core"
	"github.com/poiesic/noesis/storage"
)

func newTestRepositories(t *testing.T) (storage.ThoughtRepository, storage.ConnectionRepository) {
	t.Helper()
	thoughts, connections, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("NewMemoryRepositories() error = %v", err)
	}
	t.Cleanup(func() {
		connections.Close()
		thoughts.Close()
		backend.Close()
	})
	return thoughts, connections
}

func mustAdd(t *testing.T, repo storage.ThoughtRepository, thoughts ...*core.Thought) []*core.Thought {
	t.Helper()
	added, err := repo.AddThoughts(context.Background(), thoughts...)
	if err != nil {
		t.Fatalf("AddThoughts() error = %v", err)
	}
	return added
}

var baseTime = time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)

func TestAddThoughts_AssignsIDsAndDefaults(t *testing.T) {
	repo, _ := newTestRepositories(t)

	added := mustAdd(t, repo,
		&core.Thought{UserID: "u1", RawTranscript: "buy milk", Categories: []string{"shop", " shop "}},
		&core.Thought{UserID: "u1", RawTranscript: "call mum", CreatedAt: baseTime},
	)

	if added[0].ID == 0 || added[1].ID == 0 || added[0].ID == added[1].ID {
		t.Fatalf("expected distinct non-zero ids, got %d and %d", added[0].ID, added[1].ID)
	}
	first := added[0]
	if first.Status != core.StatusActive || first.Type != core.ThoughtTypeNote || first.Priority != core.DefaultPriority {
		t.Errorf("defaults not applied: status=%q type=%q priority=%d", first.Status, first.Type, first.Priority)
	}
	if first.Language != core.DefaultLanguage {
		t.Errorf("Language = %q, want %q", first.Language, core.DefaultLanguage)
	}
	if len(first.Categories) != 1 || first.Categories[0] != "shop" {
		t.Errorf("Categories = %v, want [shop]", first.Categories)
	}
	if first.CreatedAt.IsZero() || !first.UpdatedAt.Equal(first.CreatedAt) {
		t.Errorf("timestamps not initialised: created=%v updated=%v", first.CreatedAt, first.UpdatedAt)
	}
	if !added[1].CreatedAt.Equal(baseTime) {
		t.Errorf("explicit CreatedAt overwritten: %v", added[1].CreatedAt)
	}

	got, err := repo.GetThought(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetThought() error = %v", err)
	}
	if got.RawTranscript != "buy milk" || got.UserID != "u1" {
		t.Errorf("GetThought() = %+v", got)
	}
}

func TestAddThoughts_RejectsInvalid(t *testing.T) {
	repo, _ := newTestRepositories(t)

	_, err := repo.AddThoughts(context.Background(),
		&core.Thought{UserID: "u1", RawTranscript: "fine"},
		&core.Thought{UserID: "", RawTranscript: "no owner"},
	)
	if !errors.Is(err, core.ErrInvalidThought) {
		t.Fatalf("AddThoughts() error = %v, want %v", err, core.ErrInvalidThought)
	}

	all, err := repo.GetThoughtsByDateRange(context.Background(), "", time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("GetThoughtsByDateRange() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected nothing stored, got %d thoughts", len(all))
	}
}

func TestGetThought_NotFound(t *testing.T) {
	repo, _ := newTestRepositories(t)

	if _, err := repo.GetThought(context.Background(), 42); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetThought() error = %v, want %v", err, storage.ErrNotFound)
	}

	got, err := repo.GetThoughts(context.Background(), 42, 43)
	if err != nil || len(got) != 0 {
		t.Errorf("GetThoughts() = %v, %v; want empty", got, err)
	}
}

func TestModifyThought(t *testing.T) {
	repo, _ := newTestRepositories(t)
	ctx := context.Background()
	original := mustAdd(t, repo, &core.Thought{UserID: "u1", RawTranscript: "draft", CreatedAt: baseTime})[0]

	updated, err := repo.ModifyThought(ctx, original.ID, func(th *core.Thought) error {
		th.CleanedText = "Draft the report"
		th.Type = core.ThoughtTypeTask
		th.Priority = 5
		th.UserID = "someone-else"
		th.CreatedAt = time.Time{}
		th.Embedding = []float32{1, 0}
		return nil
	})
	if err != nil {
		t.Fatalf("ModifyThought() error = %v", err)
	}

	if updated.UserID != "u1" || !updated.CreatedAt.Equal(baseTime) || updated.ID != original.ID {
		t.Errorf("identity fields changed: %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", updated.UpdatedAt, updated.CreatedAt)
	}

	stored, err := repo.GetThought(ctx, original.ID)
	if err != nil {
		t.Fatalf("GetThought() error = %v", err)
	}
	if stored.Type != core.ThoughtTypeTask || stored.Priority != 5 || !stored.HasEmbedding() {
		t.Errorf("stored thought not updated: %+v", stored)
	}

	t.Run("callback error aborts", func(t *testing.T) {
		_, err := repo.ModifyThought(ctx, original.ID, func(th *core.Thought) error {
			th.Priority = 1
			return errors.New("boom")
		})
		if err == nil {
			t.Fatal("expected error")
		}
		stored, _ := repo.GetThought(ctx, original.ID)
		if stored.Priority != 5 {
			t.Errorf("Priority = %d, want 5", stored.Priority)
		}
	})

	t.Run("invalid result rejected", func(t *testing.T) {
		_, err := repo.ModifyThought(ctx, original.ID, func(th *core.Thought) error {
			th.Priority = 9
			return nil
		})
		if !errors.Is(err, core.ErrInvalidThought) {
			t.Errorf("ModifyThought() error = %v, want %v", err, core.ErrInvalidThought)
		}
	})

	t.Run("missing thought", func(t *testing.T) {
		_, err := repo.ModifyThought(ctx, 999, func(*core.Thought) error { return nil })
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("ModifyThought() error = %v, want %v", err, storage.ErrNotFound)
		}
	})

	t.Run("clearing the embedding removes it from vector search", func(t *testing.T) {
		_, err := repo.ModifyThought(ctx, original.ID, func(th *core.Thought) error {
			th.Embedding = nil
			return nil
		})
		if err != nil {
			t.Fatalf("ModifyThought() error = %v", err)
		}
		hits, err := repo.FindNearest(ctx, "u1", []float32{1, 0}, nil, 0, 5)
		if err != nil {
			t.Fatalf("FindNearest() error = %v", err)
		}
		if len(hits) != 0 {
			t.Errorf("FindNearest() returned %d hits, want 0", len(hits))
		}
	})
}

func TestSetStatus(t *testing.T) {
	repo, _ := newTestRepositories(t)
	ctx := context.Background()
	th := mustAdd(t, repo, &core.Thought{UserID: "u1", RawTranscript: "renew passport", Embedding: []float32{1, 0}})[0]

	if _, err := repo.SetStatus(ctx, th.ID, "deleted"); !errors.Is(err, core.ErrInvalidStatus) {
		t.Errorf("SetStatus() error = %v, want %v", err, core.ErrInvalidStatus)
	}

	updated, err := repo.SetStatus(ctx, th.ID, core.StatusArchived)
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if updated.Status != core.StatusArchived {
		t.Errorf("Status = %q, want archived", updated.Status)
	}

	nearest, err := repo.FindNearest(ctx, "u1", []float32{1, 0}, nil, 0, 5)
	if err != nil || len(nearest) != 0 {
		t.Errorf("FindNearest() = %d hits, %v; archived thought should be hidden", len(nearest), err)
	}
	text, err := repo.SearchText(ctx, "u1", "passport", nil, 5)
	if err != nil || len(text) != 0 {
		t.Errorf("SearchText() = %d hits, %v; archived thought should be hidden", len(text), err)
	}
}

func TestGetThoughtsByDateRange(t *testing.T) {
	repo, _ := newTestRepositories(t)
	ctx := context.Background()
	mustAdd(t, repo,
		&core.Thought{UserID: "u1", RawTranscript: "one", CreatedAt: baseTime},
		&core.Thought{UserID: "u2", RawTranscript: "two", CreatedAt: baseTime.Add(time.Hour)},
		&core.Thought{UserID: "u1", RawTranscript: "three", CreatedAt: baseTime.Add(2 * time.Hour)},
	)

	tests := []struct {
		name   string
		userID string
		start  time.Time
		end    time.Time
		want   []string
	}{
		{name: "all users", start: baseTime, end: baseTime.Add(3 * time.Hour), want: []string{"one", "two", "three"}},
		{name: "single user", userID: "u1", start: baseTime, end: baseTime.Add(3 * time.Hour), want: []string{"one", "three"}},
		{name: "end is exclusive", start: baseTime, end: baseTime.Add(2 * time.Hour), want: []string{"one", "two"}},
		{name: "open start", userID: "u2", start: time.Time{}, end: baseTime.Add(3 * time.Hour), want: []string{"two"}},
		{name: "unknown user", userID: "u3", start: baseTime, end: baseTime.Add(3 * time.Hour), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetThoughtsByDateRange(ctx, tt.userID, tt.start, tt.end)
			if err != nil {
				t.Fatalf("GetThoughtsByDateRange() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d thoughts, want %d", len(got), len(tt.want))
			}
			for i, th := range got {
				if th.RawTranscript != tt.want[i] {
					t.Errorf("thought[%d] = %q, want %q", i, th.RawTranscript, tt.want[i])
				}
			}
		})
	}
}

func TestFindNearest(t *testing.T) {
	repo, _ := newTestRepositories(t)
	ctx := context.Background()
	added := mustAdd(t, repo,
		&core.Thought{UserID: "u1", RawTranscript: "exact", Embedding: []float32{1, 0}},
		&core.Thought{UserID: "u1", RawTranscript: "close", Embedding: []float32{0.8, 0.6}},
		&core.Thought{UserID: "u1", RawTranscript: "far", Type: core.ThoughtTypeTask, Embedding: []float32{0, 1}},
		&core.Thought{UserID: "u1", RawTranscript: "twin", Embedding: []float32{1, 0}},
		&core.Thought{UserID: "u1", RawTranscript: "other dims", Embedding: []float32{1, 0, 0}},
		&core.Thought{UserID: "u2", RawTranscript: "foreign", Embedding: []float32{1, 0}},
		&core.Thought{UserID: "u1", RawTranscript: "no vector"},
	)
	query := []float32{1, 0}

	t.Run("ordered by distance then id", func(t *testing.T) {
		got, err := repo.FindNearest(ctx, "u1", query, nil, 0, 10)
		if err != nil {
			t.Fatalf("FindNearest() error = %v", err)
		}
		want := []string{"exact", "twin", "close", "far"}
		if len(got) != len(want) {
			t.Fatalf("got %d hits, want %d", len(got), len(want))
		}
		for i, hit := range got {
			if hit.Thought.RawTranscript != want[i] {
				t.Errorf("hit[%d] = %q, want %q", i, hit.Thought.RawTranscript, want[i])
			}
		}
		if got[0].Distance > 1e-6 || got[0].Score < 0.999 {
			t.Errorf("exact match scored distance=%v score=%v", got[0].Distance, got[0].Score)
		}
		if d := got[2].Distance; d < 0.19 || d > 0.21 {
			t.Errorf("close distance = %v, want 0.2", d)
		}
	})

	t.Run("exclude and limit", func(t *testing.T) {
		got, err := repo.FindNearest(ctx, "u1", query, nil, added[0].ID, 2)
		if err != nil {
			t.Fatalf("FindNearest() error = %v", err)
		}
		if len(got) != 2 || got[0].Thought.RawTranscript != "twin" || got[1].Thought.RawTranscript != "close" {
			t.Errorf("unexpected hits: %v", got)
		}
	})

	t.Run("filters", func(t *testing.T) {
		got, err := repo.FindNearest(ctx, "u1", query, &core.SearchFilters{Type: core.ThoughtTypeTask}, 0, 10)
		if err != nil {
			t.Fatalf("FindNearest() error = %v", err)
		}
		if len(got) != 1 || got[0].Thought.RawTranscript != "far" {
			t.Errorf("unexpected hits: %v", got)
		}
	})

	t.Run("invalid query", func(t *testing.T) {
		if _, err := repo.FindNearest(ctx, "u1", nil, nil, 0, 10); !errors.Is(err, storage.ErrInvalidQuery) {
			t.Errorf("empty vector error = %v, want %v", err, storage.ErrInvalidQuery)
		}
		if _, err := repo.FindNearest(ctx, "u1", query, nil, 0, 0); !errors.Is(err, storage.ErrInvalidQuery) {
			t.Errorf("zero limit error = %v, want %v", err, storage.ErrInvalidQuery)
		}
	})
}

func TestSearchText(t *testing.T) {
	repo, _ := newTestRepositories(t)
	ctx := context.Background()
	mustAdd(t, repo,
		&core.Thought{UserID: "u1", RawTranscript: "buy milk and bread", Categories: []string{"shopping"}},
		&core.Thought{UserID: "u1", RawTranscript: "milk the goat"},
		&core.Thought{UserID: "u2", RawTranscript: "milk for u2"},
	)

	got, err := repo.SearchText(ctx, "u1", "milk", nil, 10)
	if err != nil {
		t.Fatalf("SearchText() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d hits, want 2", len(got))
	}
	for _, hit := range got {
		if hit.Thought.UserID != "u1" || hit.Score <= 0 {
			t.Errorf("unexpected hit %+v", hit)
		}
	}

	filtered, err := repo.SearchText(ctx, "u1", "milk", &core.SearchFilters{Category: "shopping"}, 10)
	if err != nil {
		t.Fatalf("SearchText() error = %v", err)
	}
	if len(filtered) != 1 || filtered[0].Thought.RawTranscript != "buy milk and bread" {
		t.Errorf("unexpected filtered hits: %v", filtered)
	}
}

func TestSearchText_NoIndex(t *testing.T) {
	backend, err := OpenBackend("", true)
	if err != nil {
		t.Fatalf("OpenBackend() error = %v", err)
	}
	defer backend.Close()

	repo, err := NewThoughtRepository(backend, nil)
	if err != nil {
		t.Fatalf("NewThoughtRepository() error = %v", err)
	}
	defer repo.Close()

	if _, err := repo.SearchText(context.Background(), "u1", "milk", nil, 5); !errors.Is(err, storage.ErrTextIndexUnavailable) {
		t.Errorf("SearchText() error = %v, want %v", err, storage.ErrTextIndexUnavailable)
	}
}

func TestAddThoughts_TimestampsMatchStoredValues(t *testing.T) {
	repo, _ := newTestRepositories(t)
	ctx := context.Background()

	deadline := baseTime.Add(48*time.Hour + 987654321*time.Nanosecond)
	added := mustAdd(t, repo,
		&core.Thought{UserID: "u1", RawTranscript: "stamped by the caller", CreatedAt: baseTime.Add(123456789 * time.Nanosecond), Deadline: &deadline},
		&core.Thought{UserID: "u1", RawTranscript: "stamped by the store"},
	)

	for _, a := range added {
		stored, err := repo.GetThought(ctx, a.ID)
		if err != nil {
			t.Fatalf("GetThought(%d) error = %v", a.ID, err)
		}
		if !stored.CreatedAt.Equal(a.CreatedAt) || !stored.UpdatedAt.Equal(a.UpdatedAt) {
			t.Errorf("thought %d: returned created=%v updated=%v, stored created=%v updated=%v",
				a.ID, a.CreatedAt, a.UpdatedAt, stored.CreatedAt, stored.UpdatedAt)
		}
		if filters := (&core.SearchFilters{From: a.CreatedAt, To: a.CreatedAt}); !filters.Matches(stored) {
			t.Errorf("thought %d: filter bounded by the returned CreatedAt excludes the stored thought", a.ID)
		}
	}

	stored, err := repo.GetThought(ctx, added[0].ID)
	if err != nil {
		t.Fatalf("GetThought() error = %v", err)
	}
	if stored.Deadline == nil || added[0].Deadline == nil || !stored.Deadline.Equal(*added[0].Deadline) {
		t.Errorf("Deadline: returned %v, stored %v", added[0].Deadline, stored.Deadline)
	}

	updated, err := repo.ModifyThought(ctx, added[1].ID, func(th *core.Thought) error {
		th.CleanedText = "Stamped by the store"
		return nil
	})
	if err != nil {
		t.Fatalf("ModifyThought() error = %v", err)
	}
	stored, err = repo.GetThought(ctx, updated.ID)
	if err != nil {
		t.Fatalf("GetThought() error = %v", err)
	}
	if !stored.UpdatedAt.Equal(updated.UpdatedAt) {
		t.Errorf("UpdatedAt: returned %v, stored %v", updated.UpdatedAt, stored.UpdatedAt)
	}
}

type recordingIndex struct {
	storage.TextIndex
	indexed map[core.ID]*core.Thought
}

func (r *recordingIndex) Index(ctx context.Context, th *core.Thought) error {
	r.indexed[th.ID] = th
	return nil
}

func (r *recordingIndex) Close() error { return nil }

func TestReindex_UsesLatestCommittedVersion(t *testing.T) {
	backend, err := OpenBackend("", true)
	if err != nil {
		t.Fatalf("OpenBackend() error = %v", err)
	}
	defer backend.Close()

	index := &recordingIndex{indexed: make(map[core.ID]*core.Thought)}
	repo, err := NewThoughtRepository(backend, index)
	if err != nil {
		t.Fatalf("NewThoughtRepository() error = %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	added, err := repo.AddThoughts(ctx, &core.Thought{UserID: "u1", RawTranscript: "first draft", CreatedAt: baseTime})
	if err != nil {
		t.Fatalf("AddThoughts() error = %v", err)
	}
	stale := *added[0]

	if _, err := repo.ModifyThought(ctx, stale.ID, func(th *core.Thought) error {
		th.CleanedText = "Second draft"
		return nil
	}); err != nil {
		t.Fatalf("ModifyThought() error = %v", err)
	}

	// A slower writer finishing late must not put its older copy back.
	if err := repo.reindex(ctx, &stale); err != nil {
		t.Fatalf("reindex() error = %v", err)
	}
	if got := index.indexed[stale.ID]; got == nil || got.CleanedText != "Second draft" {
		t.Errorf("indexed document = %+v, want the committed second draft", got)
	}
}
