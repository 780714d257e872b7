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


// Package storage provides the storage abstraction layer for noesis.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic, plus the binary record codec shared by backends.
//
// # Constructor Return Type Pattern
//
// Backend constructors return concrete types so callers can reach
// backend-specific helpers; consumers should depend on the interfaces
// defined here:
//
//	var thoughts storage.ThoughtRepository
//	thoughts, err = badger.NewThoughtRepository(backend, index)
//
// # Architecture
//
//   - ThoughtRepository: thoughts, their date indexes, nearest-neighbour and text queries
//   - ConnectionRepository: undirected similarity edges keyed by canonical pair
//   - TextIndex: ranked full-text index consulted by ThoughtRepository.SearchText
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	thoughts, connections, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines. Read-modify-write operations
// (ModifyThought, UpsertConnection) are atomic.
package storage
