package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/noesis/backfill"
	"github.com/poiesic/noesis/core"
	"github.com/poiesic/noesis/importer"
	"github.com/poiesic/noesis/ingestion"
	"github.com/urfave/cli/v2"
)

var errUserRequired = errors.New("user is required (--user or NOESIS_USER)")

func requireUser(c *cli.Context) (string, error) {
	user := strings.TrimSpace(c.String("user"))
	if user == "" {
		return "", errUserRequired
	}
	return user, nil
}

func parseID(c *cli.Context, pos int) (core.ID, error) {
	arg := c.Args().Get(pos)
	if arg == "" {
		return 0, fmt.Errorf("thought id is required")
	}
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid thought id %q", arg)
	}
	return core.ID(id), nil
}

func ingestCommand(c *cli.Context) error {
	ctx := c.Context
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	transcript := strings.Join(c.Args().Slice(), " ")
	if transcript == "" {
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return fmt.Errorf("failed to read transcript: %w", err)
		}
		transcript = string(data)
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	ticket, err := pipeline.IngestFromTranscript(ctx, user, transcript, &ingestion.IngestOptions{
		Language: c.String("language"),
		Source:   c.String("source"),
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "thought %d stored\n", ticket.ThoughtID)

	return reportTicket(c, db.Thoughts().GetThought, ticket)
}

func reprocessCommand(c *cli.Context) error {
	ctx := c.Context
	id, err := parseID(c, 0)
	if err != nil {
		return err
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	var opts []ingestion.ProcessOption
	if c.Bool("skip-classification") {
		opts = append(opts, ingestion.WithoutClassification())
	}
	ticket, err := pipeline.ReprocessThought(ctx, id, opts...)
	if err != nil {
		return fmt.Errorf("reprocess failed: %w", err)
	}

	return reportTicket(c, db.Thoughts().GetThought, ticket)
}

// reportTicket waits for a run and prints what it did.
func reportTicket(c *cli.Context, get func(context.Context, core.ID) (*core.Thought, error), ticket *ingestion.Ticket) error {
	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	result, err := ticket.Wait(ctx)
	if err != nil {
		return fmt.Errorf("processing of thought %d failed: %w", ticket.ThoughtID, err)
	}
	if result.Classified && !result.Relevant {
		fmt.Fprintf(c.App.Writer, "thought %d: not relevant (confidence %.2f)\n", result.ThoughtID, result.Confidence)
		return nil
	}

	thought, err := get(c.Context, result.ThoughtID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "thought %d: type=%s priority=%d embedded=%t connections=%d\n",
		thought.ID, thought.Type, thought.Priority, result.EmbeddingGenerated, result.ConnectionsFound)
	if thought.Summary != "" {
		fmt.Fprintf(c.App.Writer, "  %s\n", thought.Summary)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	query := strings.Join(c.Args().Slice(), " ")

	filters, err := searchFilters(c)
	if err != nil {
		return err
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.Search(c.Context, user, query, filters, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Fprintln(c.App.Writer, "no results")
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(c.App.Writer, "%2d. [%d] %.4f %s\n", i+1, r.Thought.ID, r.Score, displayText(r.Thought))
	}
	return nil
}

func searchFilters(c *cli.Context) (*core.SearchFilters, error) {
	filters := &core.SearchFilters{
		Type:     core.ThoughtType(c.String("type")),
		Priority: c.Int("priority"),
		Category: c.String("category"),
		Status:   core.Status(c.String("status")),
	}
	for _, bound := range []struct {
		flag string
		dst  *time.Time
	}{{"from", &filters.From}, {"to", &filters.To}} {
		v := c.String(bound.flag)
		if v == "" {
			continue
		}
		t, ok := core.ParseDeadline(v)
		if !ok {
			return nil, fmt.Errorf("invalid --%s date %q", bound.flag, v)
		}
		*bound.dst = t
	}
	if err := core.ValidateFilters(filters); err != nil {
		return nil, err
	}
	return filters, nil
}

func connectionsCommand(c *cli.Context) error {
	id, err := parseID(c, 0)
	if err != nil {
		return err
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	conns, err := db.Connections().GetConnections(c.Context, id)
	if err != nil {
		return err
	}
	if len(conns) == 0 {
		fmt.Fprintf(c.App.Writer, "thought %d has no connections\n", id)
		return nil
	}

	ids := make([]core.ID, len(conns))
	for i, conn := range conns {
		ids[i] = conn.Other(id)
	}
	thoughts, err := db.Thoughts().GetThoughts(c.Context, ids...)
	if err != nil {
		return err
	}
	byID := make(map[core.ID]*core.Thought, len(thoughts))
	for _, t := range thoughts {
		byID[t.ID] = t
	}

	for _, conn := range conns {
		other := conn.Other(id)
		text := ""
		if t, ok := byID[other]; ok {
			text = displayText(t)
		}
		fmt.Fprintf(c.App.Writer, "[%d] %.3f %s\n", other, conn.Similarity, text)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	id, err := parseID(c, 0)
	if err != nil {
		return err
	}
	status := core.Status(strings.ToLower(c.Args().Get(1)))
	if err := core.ValidateStatus(status); err != nil {
		return err
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	thought, err := db.Thoughts().SetStatus(c.Context, id, status)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "thought %d is now %s\n", thought.ID, thought.Status)
	return nil
}

func backfillCommand(c *cli.Context) error {
	config := &backfill.Config{
		BatchSize:             c.Int("batch-size"),
		ReportInterval:        c.Int("report-interval"),
		MaxRetries:            c.Int("max-retries"),
		RetryDelay:            c.Duration("retry-delay"),
		UserID:                c.String("user"),
		MissingEmbeddingsOnly: !c.Bool("all"),
	}

	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	backfiller, err := db.NewBackfiller(pipeline, config, c.App.ErrWriter)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", cfg.Database.Path)
	fmt.Fprintln(c.App.ErrWriter)

	summary, err := backfiller.Run(c.Context)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "processed=%d embedded=%d connections=%d failed=%d\n",
		summary.Processed, summary.Embedded, summary.Connections, summary.Failed)
	return nil
}

func importCommand(c *cli.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("import file is required")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	items, err := importer.Parse(path, f)
	if err != nil {
		return err
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	im, err := db.NewImporter(pipeline)
	if err != nil {
		return err
	}
	report, err := im.Import(c.Context, user, items)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	for _, rowErr := range report.Errors {
		fmt.Fprintln(c.App.ErrWriter, rowErr)
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()
	pending := 0
	for _, ticket := range report.Tickets {
		if _, err := ticket.Wait(ctx); err != nil {
			pending++
		}
	}

	fmt.Fprintf(c.App.Writer, "imported %d thoughts, %d rows rejected\n", len(report.Imported), len(report.Errors))
	if pending > 0 {
		fmt.Fprintf(c.App.Writer, "%d thoughts still need enrichment; run backfill\n", pending)
	}
	return nil
}

func displayText(t *core.Thought) string {
	switch {
	case t.Summary != "":
		return t.Summary
	case t.CleanedText != "":
		return t.CleanedText
	default:
		return t.RawTranscript
	}
}
