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


// Package search provides hybrid lexical and semantic search over thoughts.
//
// The Searcher embeds the query and, when that works, runs a nearest-neighbour
// query and a full-text query concurrently. The two ranked lists are fused
// with Reciprocal Rank Fusion: an item at 1-based rank r contributes
// 1/(60+r) per list. Without a query embedding only the full-text list is
// used.
//
// Every query is scoped to one user and never returns archived thoughts.
package search
