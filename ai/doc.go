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


// Package ai provides abstractions for the external services used by noesis.
//
// The package defines three interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - LanguageModel: Answers a prompt with free-form text
//   - AIProvider: Aggregates AI services for convenient initialization
//
// Either service may be unconfigured. Providers then return nil for it and
// callers degrade instead of failing: Embed returns nil, and the classifier
// falls back to its defaults.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Usage
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector := ai.Embed(ctx, provider.Embedder(), "buy milk tomorrow", 0, nil)
package ai
