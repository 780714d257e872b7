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


package classify

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/noesis/ai"
	"github.com/poiesic/noesis/core"
)

// DefaultRelevanceThreshold is the minimum confidence required before a
// relevant transcript is sent for extraction.
const DefaultRelevanceThreshold = 0.70

// Classification is the outcome of Classify.
type Classification struct {
	Relevant   bool
	Confidence float64
	// Extraction is nil when extraction was not attempted or the model
	// could not be reached.
	Extraction *core.Extraction
}

// Classifier runs relevance filtering and attribute extraction through a
// language model.
type Classifier struct {
	model     ai.LanguageModel
	threshold float64
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRelevanceThreshold sets the confidence needed to run extraction.
func WithRelevanceThreshold(threshold float64) Option {
	return func(c *Classifier) {
		c.threshold = threshold
	}
}

// WithClock overrides the source of "today" given to the model.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// NewClassifier creates a classifier. model may be nil, in which case every
// transcript is reported relevant with neutral confidence and no extraction.
func NewClassifier(model ai.LanguageModel, opts ...Option) *Classifier {
	c := &Classifier{
		model:     model,
		threshold: DefaultRelevanceThreshold,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "classifier")
	return c
}

// Classify evaluates transcript and, when it passes the relevance gate,
// extracts structured attributes. It never returns an error.
func (c *Classifier) Classify(ctx context.Context, transcript, language string) Classification {
	if c.model == nil {
		return Classification{Relevant: true, Confidence: defaultConfidence}
	}
	if strings.TrimSpace(language) == "" {
		language = core.DefaultLanguage
	}

	result := c.relevance(ctx, transcript)
	if !result.Relevant || result.Confidence < c.threshold {
		c.logger.Debug("transcript below relevance gate",
			"relevant", result.Relevant,
			"confidence", result.Confidence)
		return result
	}

	result.Extraction = c.extract(ctx, transcript, language)
	return result
}

func (c *Classifier) relevance(ctx context.Context, transcript string) Classification {
	response, err := c.model.Complete(ctx, relevanceInstructions, transcript)
	if err != nil {
		c.logger.Warn("relevance check failed", "err", err)
		return Classification{Relevant: true, Confidence: defaultConfidence}
	}

	relevant, confidence, ok := parseRelevance(response)
	if !ok {
		c.logger.Warn("relevance response has no JSON object", "response", response)
		return Classification{Relevant: true, Confidence: defaultConfidence}
	}
	return Classification{Relevant: relevant, Confidence: confidence}
}

func (c *Classifier) extract(ctx context.Context, transcript, language string) *core.Extraction {
	instructions := buildExtractionInstructions(c.now().UTC(), language)
	response, err := c.model.Complete(ctx, instructions, transcript)
	if err != nil {
		c.logger.Warn("extraction failed", "err", err)
		return nil
	}

	extraction, ok := parseExtraction(response, transcript)
	if !ok {
		c.logger.Warn("malformed extraction response, using defaults", "response", response)
		return defaultExtraction(transcript)
	}
	return extraction
}
