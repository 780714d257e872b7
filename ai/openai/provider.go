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
	"log/slog"

	"github.com/poiesic/noesis/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// Services whose host or model is empty are left nil.
type Provider struct {
	config   *ai.Config
	embedder *Embedder
	model    *LanguageModel
	logger   *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "openai-provider")
	p := &Provider{
		config: config,
		logger: logger,
	}

	if config.EmbeddingEnabled() {
		embedder, err := newEmbedder(config)
		if err != nil {
			return nil, err
		}
		p.embedder = embedder
	} else {
		logger.Info("embedding service not configured")
	}

	if config.ClassifierEnabled() {
		model, err := newLanguageModel(config)
		if err != nil {
			return nil, err
		}
		p.model = model
	} else {
		logger.Info("classification model not configured")
	}

	return p, nil
}

// Embedder returns the text embedding service, or nil when unconfigured.
func (p *Provider) Embedder() ai.Embedder {
	if p.embedder == nil {
		return nil
	}
	return p.embedder
}

// LanguageModel returns the classification model, or nil when unconfigured.
func (p *Provider) LanguageModel() ai.LanguageModel {
	if p.model == nil {
		return nil
	}
	return p.model
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
