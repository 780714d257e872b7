// Package backfill reprocesses stored thoughts in bulk, for example after an
// embedding or language model outage left thoughts unembedded or unlinked.
//
// Thoughts are read in creation order through the date index, processed one
// by one with retries and exponential backoff, and progress is written to an
// io.Writer.
package backfill
