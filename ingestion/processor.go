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


package ingestion

import (
	"context"

	"github.com/poiesic/noesis/core"
)

// run carries one thought through the processors.
type run struct {
	thought *core.Thought
	result  *Result
	config  processConfig
}

// processor is an internal interface for one enrichment step.
// Implementations handle a single concern like classification or embeddings.
type processor interface {
	// process advances the run. Returning false stops later processors
	// without failing the run.
	process(ctx context.Context, r *run) (bool, error)
}
