package ai

import (
	"context"
	"log/slog"
	"strings"
)

// EmbeddingText joins the best available summary with the raw transcript.
// Empty parts are skipped.
func EmbeddingText(summary, raw string) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(summary); s != "" {
		parts = append(parts, s)
	}
	if r := strings.TrimSpace(raw); r != "" {
		parts = append(parts, r)
	}
	return strings.Join(parts, " ")
}

// Embed returns a unit-length embedding for text, or nil when the embedder
// is not configured, the call fails, or the result is unusable. A nil result
// is a soft skip for callers, never an error.
//
// dims is the expected vector length; zero accepts any non-empty vector.
func Embed(ctx context.Context, embedder Embedder, text string, dims int, logger *slog.Logger) []float32 {
	if logger == nil {
		logger = slog.Default()
	}
	if embedder == nil {
		logger.Debug("embedding skipped, embedder not configured")
		return nil
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	vector, err := embedder.EmbedText(ctx, text)
	if err != nil {
		logger.Warn("embedding unavailable", "err", err)
		return nil
	}
	if len(vector) == 0 {
		logger.Warn("embedder returned empty vector")
		return nil
	}
	if dims > 0 && len(vector) != dims {
		logger.Warn("embedding has unexpected dimensions", "expected", dims, "actual", len(vector))
		return nil
	}
	return NormalizeVector(vector)
}
