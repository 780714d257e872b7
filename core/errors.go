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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidThought indicates a Thought failed validation.
	ErrInvalidThought = errors.New("invalid thought")

	// ErrInvalidConnection indicates a Connection failed validation.
	ErrInvalidConnection = errors.New("invalid connection")

	// ErrInvalidFilters indicates SearchFilters failed validation.
	ErrInvalidFilters = errors.New("invalid search filters")

	// ErrEmptyContent indicates both raw and cleaned text are empty.
	ErrEmptyContent = errors.New("thought text cannot be empty")

	// ErrEmptyUser indicates a missing owning user.
	ErrEmptyUser = errors.New("user id cannot be empty")

	// ErrInvalidThoughtType indicates an unknown ThoughtType value.
	ErrInvalidThoughtType = errors.New("invalid thought type")

	// ErrInvalidStatus indicates an unknown Status value.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidPriority indicates a priority outside [1,5].
	ErrInvalidPriority = errors.New("priority must be between 1 and 5")

	// ErrInvalidSentiment indicates a sentiment outside [-1,1].
	ErrInvalidSentiment = errors.New("sentiment must be between -1 and 1")

	// ErrSelfConnection indicates a connection whose endpoints are equal.
	ErrSelfConnection = errors.New("connection endpoints must differ")

	// ErrNonCanonicalPair indicates a connection whose endpoints are not ordered.
	ErrNonCanonicalPair = errors.New("connection endpoints must be ordered lower id first")

	// ErrInvalidSimilarity indicates a similarity outside [0,1].
	ErrInvalidSimilarity = errors.New("similarity must be between 0 and 1")
)
