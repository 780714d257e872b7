package classify

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/noesis/core"
)

const (
	defaultConfidence = 0.5
	summaryPrefixLen  = 200
)

// parseRelevance reads a relevance verdict. ok is false when the response
// holds no usable JSON object.
func parseRelevance(response string) (relevant bool, confidence float64, ok bool) {
	v, found := findJSON(response)
	if !found {
		return false, 0, false
	}
	obj, isObj := v.(map[string]any)
	if !isObj {
		return false, 0, false
	}

	relevant, _ = asBool(obj["relevant"])

	confidence, hasConf := asNumber(obj["confidence"])
	if !hasConf || confidence <= 0 {
		confidence = defaultConfidence
	}
	return relevant, core.ClampUnit(confidence, 0, 1), true
}

// parseExtraction validates a model answer against the extraction schema.
// ok is false when no JSON object could be recovered.
func parseExtraction(response, transcript string) (*core.Extraction, bool) {
	v, found := findJSON(response)
	if !found {
		return nil, false
	}
	obj, isObj := v.(map[string]any)
	if !isObj {
		return nil, false
	}

	ext := &core.Extraction{
		Type:        core.ThoughtTypeNote,
		Priority:    core.DefaultPriority,
		Categories:  core.NormalizeLabels(asStrings(obj["categories"])),
		ActionItems: asStrings(obj["action_items"]),
		Deadline:    asDeadline(obj["deadline"]),
	}

	if s, ok := obj["type"].(string); ok {
		ext.Type = core.ParseThoughtType(s)
	}

	if p, ok := asNumber(obj["priority"]); ok && p != 0 {
		ext.Priority = core.ClampPriority(p)
	}

	if s, ok := asNumber(obj["sentiment"]); ok {
		ext.Sentiment = core.ClampUnit(s, -1, 1)
	}

	if entities, ok := obj["entities"].(map[string]any); ok {
		ext.Entities = core.Entities{
			People:   asStrings(entities["people"]),
			Places:   asStrings(entities["places"]),
			Projects: asStrings(entities["projects"]),
		}
	}

	if s, ok := obj["summary"].(string); ok {
		ext.Summary = strings.TrimSpace(s)
	}
	if ext.Summary == "" {
		ext.Summary = summaryPrefix(transcript)
	}

	return ext, true
}

// defaultExtraction is used when the model answered but nothing could be
// validated.
func defaultExtraction(transcript string) *core.Extraction {
	return &core.Extraction{
		Type:     core.ThoughtTypeNote,
		Priority: core.DefaultPriority,
		Summary:  summaryPrefix(transcript),
	}
}

func summaryPrefix(transcript string) string {
	runes := []rune(transcript)
	if len(runes) > summaryPrefixLen {
		runes = runes[:summaryPrefixLen]
	}
	return string(runes)
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	}
	return false, false
}

// asNumber accepts JSON numbers and numeric strings.
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// asStrings keeps the trimmed, non-empty string elements of a JSON array.
func asStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func asDeadline(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	if t, ok := core.ParseDeadline(s); ok {
		return &t
	}
	return nil
}
