// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.LanguageModel,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Scripted model answers
//	model := mock.NewMockLanguageModel().
//	    WithCompleteFunc(func(ctx context.Context, instructions, input string) (string, error) {
//	        return `{"relevant": true, "confidence": 0.9}`, nil
//	    })
//
//	// Leave a service unconfigured
//	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), nil)
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockLanguageModel: Answers every prompt with "{}"
//   - MockProvider: Aggregates mock embedder and language model
package mock
