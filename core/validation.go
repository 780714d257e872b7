// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ValidateThought validates a Thought according to domain rules.
//
// Validation rules:
//   - UserID must not be empty
//   - RawTranscript or CleanedText must not be blank
//   - Type, when set, must be a known ThoughtType
//   - Priority must be within [1,5]
//   - Status, when set, must be a known Status
//   - Sentiment, when present, must be within [-1,1]
//
// NOT validated (populated by the pipeline):
//   - Embedding (absent until the embedder runs)
//   - ID (assigned by storage)
func ValidateThought(t *Thought) error {
	if t == nil {
		return fmt.Errorf("%w: thought is nil", ErrInvalidThought)
	}
	if t.UserID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidThought, ErrEmptyUser)
	}
	if strings.TrimSpace(t.RawTranscript) == "" && strings.TrimSpace(t.CleanedText) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidThought, ErrEmptyContent)
	}
	if t.Type != "" {
		if err := ValidateThoughtType(t.Type); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidThought, err)
		}
	}
	if t.Priority < MinPriority || t.Priority > MaxPriority {
		return fmt.Errorf("%w: %w: %d", ErrInvalidThought, ErrInvalidPriority, t.Priority)
	}
	if t.Status != "" {
		if err := ValidateStatus(t.Status); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidThought, err)
		}
	}
	if t.Sentiment != nil && (*t.Sentiment < -1 || *t.Sentiment > 1 || math.IsNaN(*t.Sentiment)) {
		return fmt.Errorf("%w: %w", ErrInvalidThought, ErrInvalidSentiment)
	}
	return nil
}

// ValidateConnection validates a Connection according to domain rules.
func ValidateConnection(c *Connection) error {
	if c == nil {
		return fmt.Errorf("%w: connection is nil", ErrInvalidConnection)
	}
	if c.ThoughtA == c.ThoughtB {
		return fmt.Errorf("%w: %w", ErrInvalidConnection, ErrSelfConnection)
	}
	if c.ThoughtA > c.ThoughtB {
		return fmt.Errorf("%w: %w", ErrInvalidConnection, ErrNonCanonicalPair)
	}
	if c.Similarity < 0 || c.Similarity > 1 || math.IsNaN(c.Similarity) {
		return fmt.Errorf("%w: %w", ErrInvalidConnection, ErrInvalidSimilarity)
	}
	if c.UserID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConnection, ErrEmptyUser)
	}
	return nil
}

// ValidateFilters validates SearchFilters.
func ValidateFilters(f *SearchFilters) error {
	if f == nil {
		return nil
	}
	if f.Type != "" {
		if err := ValidateThoughtType(f.Type); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidFilters, err)
		}
	}
	if f.Status != "" {
		if err := ValidateStatus(f.Status); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidFilters, err)
		}
	}
	if f.Priority != 0 && (f.Priority < MinPriority || f.Priority > MaxPriority) {
		return fmt.Errorf("%w: %w: %d", ErrInvalidFilters, ErrInvalidPriority, f.Priority)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return fmt.Errorf("%w: date range end precedes start", ErrInvalidFilters)
	}
	return nil
}

// ValidateThoughtType validates that a ThoughtType has a known value.
func ValidateThoughtType(t ThoughtType) error {
	for _, known := range ThoughtTypes {
		if t == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidThoughtType, string(t))
}

// ValidateStatus validates that a Status has a known value.
func ValidateStatus(s Status) error {
	for _, known := range Statuses {
		if s == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
}

// ParseThoughtType returns the ThoughtType named by s, falling back to note.
func ParseThoughtType(s string) ThoughtType {
	t := ThoughtType(strings.ToLower(strings.TrimSpace(s)))
	if ValidateThoughtType(t) != nil {
		return ThoughtTypeNote
	}
	return t
}

// ClampPriority forces p into [1,5] and rounds it. Clamping happens in
// float64 so huge values cannot overflow the conversion.
func ClampPriority(p float64) int {
	if math.IsNaN(p) {
		return DefaultPriority
	}
	return int(math.Round(min(MaxPriority, max(MinPriority, p))))
}

// ClampUnit forces v into [lo,hi]. NaN maps to zero before clamping.
func ClampUnit(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		v = 0
	}
	return math.Min(hi, math.Max(lo, v))
}

// NormalizeLabels trims labels, drops empty ones and removes duplicates while
// keeping first-seen order.
func NormalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// ParseDeadline accepts RFC3339, a zone-less timestamp or a bare date. Values
// without a zone are taken as UTC. The result is always in UTC.
func ParseDeadline(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
