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


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/noesis"
	"github.com/poiesic/noesis/core"
	"github.com/urfave/cli/v2"
)

// extraOptions are appended when a command opens the database.
var extraOptions []noesis.DatabaseOption

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "noesis",
		Usage: "Capture, enrich and search personal thoughts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{"NOESIS_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the data directory (overrides the config file)",
			},
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "User id owning the thoughts",
				EnvVars: []string{"NOESIS_USER"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Store a transcript and enrich it",
				ArgsUsage: "[transcript]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "language",
						Usage: "Transcript language",
						Value: core.DefaultLanguage,
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Origin tag stored with the thought",
						Value: core.SourceVoice,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for enrichment",
						Value: 2 * time.Minute,
					},
				},
			},
			{
				Name:      "reprocess",
				Usage:     "Run enrichment again for a stored thought",
				ArgsUsage: "<id>",
				Action:    reprocessCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "skip-classification",
						Usage: "Keep stored attributes; only embed and link",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for enrichment",
						Value: 2 * time.Minute,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Hybrid search over the user's thoughts",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results (0 uses the configured default)",
					},
					&cli.StringFlag{Name: "type", Usage: "Only thoughts of this type"},
					&cli.IntFlag{Name: "priority", Usage: "Only thoughts with this priority"},
					&cli.StringFlag{Name: "category", Usage: "Only thoughts with this category"},
					&cli.StringFlag{Name: "status", Usage: "Only thoughts with this status"},
					&cli.StringFlag{Name: "from", Usage: "Created at or after (RFC3339 or YYYY-MM-DD)"},
					&cli.StringFlag{Name: "to", Usage: "Created at or before (RFC3339 or YYYY-MM-DD)"},
				},
			},
			{
				Name:      "connections",
				Usage:     "List thoughts connected to a thought",
				ArgsUsage: "<id>",
				Action:    connectionsCommand,
			},
			{
				Name:      "status",
				Usage:     "Change the status of a thought",
				ArgsUsage: "<id> <active|done|snoozed|archived>",
				Action:    statusCommand,
			},
			{
				Name:   "backfill",
				Usage:  "Reprocess stored thoughts in batches",
				Action: backfillCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Reprocess every thought, not only those without an embedding",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of thoughts to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N thoughts",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per thought",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "import",
				Usage:     "Import thoughts from a JSON or CSV export",
				ArgsUsage: "<file>",
				Action:    importCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for imported thoughts to be enriched",
						Value: 10 * time.Minute,
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// openDatabase loads the configuration named by --config (defaults
// otherwise), applies --db and opens the store.
func openDatabase(c *cli.Context) (*noesis.Database, *noesis.Config, error) {
	cfg := noesis.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := noesis.LoadConfig(path)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	if dir := c.String("db"); dir != "" {
		cfg.Database.Path = dir
	}

	opts := append([]noesis.DatabaseOption{noesis.WithConfig(cfg)}, extraOptions...)
	db, err := noesis.NewDatabase(cfg.Database.Path, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, cfg, nil
}
