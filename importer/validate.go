package importer

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/poiesic/noesis/core"
)

const (
	defaultLanguage = "cs"
	defaultSource   = "import"
)

// Validate splits items into the valid ones and one RowError per rejected
// item. Input order is kept.
func Validate(items []*Item) ([]*Item, []*RowError) {
	valid := make([]*Item, 0, len(items))
	var rowErrs []*RowError
	for _, it := range items {
		if err := validateItem(it); err != nil {
			rowErrs = append(rowErrs, &RowError{Row: it.Row, Err: err})
			continue
		}
		valid = append(valid, it)
	}
	return valid, rowErrs
}

func validateItem(it *Item) error {
	var errs []error
	if strings.TrimSpace(it.RawTranscript) == "" {
		errs = append(errs, ErrMissingText)
	}
	if it.Type != "" {
		if err := core.ValidateThoughtType(core.ThoughtType(strings.ToLower(strings.TrimSpace(it.Type)))); err != nil {
			errs = append(errs, err)
		}
	}
	if p := it.Priority; p != nil {
		if math.IsNaN(*p) || *p != math.Trunc(*p) || *p < core.MinPriority || *p > core.MaxPriority {
			errs = append(errs, fmt.Errorf("%w: %v", core.ErrInvalidPriority, *p))
		}
	}
	if s := it.Sentiment; s != nil {
		if math.IsNaN(*s) || *s < -1 || *s > 1 {
			errs = append(errs, fmt.Errorf("%w: %v", core.ErrInvalidSentiment, *s))
		}
	}
	if it.Deadline != "" {
		if _, ok := core.ParseDeadline(it.Deadline); !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidDeadline, it.Deadline))
		}
	}
	return errors.Join(errs...)
}

// thought builds the stored form of a valid item.
func (it *Item) thought(userID string) *core.Thought {
	t := &core.Thought{
		UserID:        userID,
		RawTranscript: it.RawTranscript,
		CleanedText:   firstNonEmpty(it.CleanedText, it.RawTranscript),
		Summary:       it.Summary,
		Type:          core.ParseThoughtType(it.Type),
		Priority:      3,
		Categories:    core.NormalizeLabels(it.Categories),
		Sentiment:     it.Sentiment,
		Entities:      it.Entities,
		ActionItems:   core.NormalizeLabels(it.ActionItems),
		Status:        core.StatusActive,
		Language:      firstNonEmpty(it.Language, defaultLanguage),
		Source:        firstNonEmpty(it.Source, defaultSource),
	}
	if it.Priority != nil {
		t.Priority = int(*it.Priority)
	}
	if d, ok := core.ParseDeadline(it.Deadline); ok {
		t.Deadline = &d
	}
	return t
}
