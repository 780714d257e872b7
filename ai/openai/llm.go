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


package openai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/noesis/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrNoChoices is returned when the model answers without any completion.
var ErrNoChoices = errors.New("model returned no choices")

// LanguageModel implements ai.LanguageModel using OpenAI-compatible chat APIs.
type LanguageModel struct {
	client  llms.Model
	timeout time.Duration
	logger  *slog.Logger
}

// newLanguageModel is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newLanguageModel(config *ai.Config) (*LanguageModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ClassifierHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.ClassifierModel),
	)
	if err != nil {
		return nil, err
	}

	return &LanguageModel{
		client:  client,
		timeout: config.RequestTimeout,
		logger:  slog.Default().With("component", "openai-language-model"),
	}, nil
}

// NewLanguageModel creates a new language model client using the provided configuration.
//
// Returns ai.LanguageModel interface to enforce abstraction.
func NewLanguageModel(config *ai.Config) (ai.LanguageModel, error) {
	return newLanguageModel(config)
}

// Complete sends the instructions as a system message and input as the user
// message, and returns the first choice verbatim.
func (m *LanguageModel) Complete(ctx context.Context, instructions, input string) (string, error) {
	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(instructions),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(input),
			},
		},
	}

	response, err := m.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		m.logger.Error("failed to generate content", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		m.logger.Debug("no choices returned from model")
		return "", ErrNoChoices
	}

	return response.Choices[0].Content, nil
}
