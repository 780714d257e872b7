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


package badger

import (
	"github.com/poiesic/noesis/storage"
	textindex "github.com/poiesic/noesis/storage/bleve"
)

// NewMemoryRepositories creates in-memory thought and connection repositories
// for testing, backed by a memory-only text index.
// Caller must close both repos and backend when done.
func NewMemoryRepositories() (storage.ThoughtRepository, storage.ConnectionRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	index, err := textindex.NewMemOnly()
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	thoughtRepo, err := NewThoughtRepository(backend, index)
	if err != nil {
		index.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	connectionRepo, err := NewConnectionRepository(backend)
	if err != nil {
		thoughtRepo.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return thoughtRepo, connectionRepo, backend, nil
}
