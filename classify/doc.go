// Package classify turns a raw transcript into a relevance verdict and,
// for relevant transcripts, a structured core.Extraction.
//
// Classification talks to an ai.LanguageModel in two rounds: a cheap
// relevance check and, above the confidence threshold, a full extraction.
// Model output is treated as untrusted text. The first balanced JSON value
// is located, repaired once if needed, and validated field by field before
// anything is returned.
//
// Classify never fails. Service errors and malformed answers degrade to
// documented defaults and are logged at Warn.
package classify
