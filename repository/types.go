/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"

	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/accounts/types"
)

// Record is a write payload for entity T. Model builds a new entity from the
// payload and Columns lists the columns an update replaces.
type Record[T any] interface {
	Model() *T
	Columns() []string
}

// Repository is the CRUD contract shared by every entity. Rows with
// enabled = FALSE are invisible to all of its methods.
type Repository[T any, U Record[T]] interface {
	// GetByID returns nil, nil when no enabled row has id.
	GetByID(ctx context.Context, id string) (*T, error)

	// List returns the enabled rows equal to every filter. An unknown field
	// fails with types.ErrInvalidFilter before any query runs.
	List(ctx context.Context, filters types.Filters) ([]*T, error)

	// Page is List with ordering, offset and limit.
	Page(ctx context.Context, req *types.PageRequest) (*types.Pagination[T], error)

	// Add inserts a new entity built from record.
	Add(ctx context.Context, record U) (*T, error)

	// Update replaces record.Columns() on the enabled row with id and returns
	// the new state, or nil, nil when no enabled row matched.
	Update(ctx context.Context, id string, record U) (*T, error)

	// Delete sets enabled = FALSE and reports whether a row was affected.
	Delete(ctx context.Context, id string) (bool, error)

	Dialect() schema.Dialect
}
