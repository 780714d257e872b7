// Package ingestion turns raw transcripts into enriched, embedded and linked
// thoughts.
//
// The Pipeline persists a new thought synchronously and then runs the
// remaining steps on a bounded worker pool:
//   - classification and extraction, merged into the stored record
//   - embedding of the summary and raw transcript
//   - connection discovery against the same user's nearest neighbours
//
// Callers receive a Ticket that completes when the work finishes. Language
// model and embedding failures are soft skips; persistence failures end the
// run and are reported through the ticket.
package ingestion
