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


package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/noesis/core"
	"github.com/poiesic/noesis/ingestion"
	"github.com/poiesic/noesis/storage"
)

// Scheduler queues stored thoughts for embedding and linking.
// *ingestion.Pipeline satisfies it.
type Scheduler interface {
	ReprocessThought(ctx context.Context, id core.ID, opts ...ingestion.ProcessOption) (*ingestion.Ticket, error)
}

// Report summarises one import.
type Report struct {
	// Imported lists the ids of the stored thoughts in input order.
	Imported []core.ID
	// Errors holds the rejected rows.
	Errors []*RowError
	// Tickets track the scheduled processing of the imported thoughts.
	Tickets []*ingestion.Ticket
}

// Importer stores parsed items for a user.
type Importer struct {
	thoughts  storage.ThoughtRepository
	scheduler Scheduler
	logger    *slog.Logger
}

// NewImporter creates an importer. scheduler may be nil, in which case
// imported thoughts wait for a backfill run to be embedded.
func NewImporter(thoughts storage.ThoughtRepository, scheduler Scheduler) (*Importer, error) {
	if thoughts == nil {
		return nil, ErrThoughtRepositoryRequired
	}
	return &Importer{
		thoughts:  thoughts,
		scheduler: scheduler,
		logger:    slog.Default().With("component", "importer"),
	}, nil
}

// Import validates items, stores the valid ones in a single batch and
// schedules them for processing without classification. Rejected rows are
// reported, not returned as an error.
func (im *Importer) Import(ctx context.Context, userID string, items []*Item) (*Report, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	valid, rowErrs := Validate(items)
	report := &Report{Errors: rowErrs}
	batch := make([]*core.Thought, 0, len(valid))
	for _, it := range valid {
		batch = append(batch, it.thought(userID))
	}
	if len(batch) == 0 {
		return report, nil
	}

	added, err := im.thoughts.AddThoughts(ctx, batch...)
	if err != nil {
		return report, fmt.Errorf("failed to store imported thoughts: %w", err)
	}
	for _, t := range added {
		report.Imported = append(report.Imported, t.ID)
	}
	im.logger.Info("thoughts imported", "user", userID, "imported", len(added), "rejected", len(report.Errors))

	if im.scheduler == nil {
		return report, nil
	}
	for _, t := range added {
		ticket, err := im.scheduler.ReprocessThought(ctx, t.ID, ingestion.WithoutClassification())
		if err != nil {
			im.logger.Warn("imported thought not scheduled", "thought", t.ID, "err", err)
			continue
		}
		report.Tickets = append(report.Tickets, ticket)
	}
	return report, nil
}
