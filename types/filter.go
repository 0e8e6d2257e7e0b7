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

package types

import (
	"errors"
	"fmt"
	"sort"

	"github.com/uptrace/bun/schema"
)

// ErrInvalidFilter is returned when a filter or order names a column the
// entity does not have.
var ErrInvalidFilter = errors.New("invalid filter")

// Field identifies a column of an entity table.
type Field string

func (f Field) String() string { return string(f) }

// Filters maps fields to the value they must equal. All entries are ANDed.
type Filters map[Field]any

// NewFilters builds Filters from alternating field/value pairs.
func NewFilters(pairs ...any) (Filters, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of arguments", ErrInvalidFilter)
	}
	filters := make(Filters, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		field, ok := pairs[i].(Field)
		if !ok {
			return nil, fmt.Errorf("%w: argument %d is %T, not a Field", ErrInvalidFilter, i, pairs[i])
		}
		filters[field] = pairs[i+1]
	}
	return filters, nil
}

// With returns a copy of f with field set to value.
func (f Filters) With(field Field, value any) Filters {
	out := make(Filters, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out[field] = value
	return out
}

// Fields returns the filter keys in a stable order.
func (f Filters) Fields() []Field {
	fields := make([]Field, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Validate checks every key against the table's columns.
func (f Filters) Validate(table *schema.Table) error {
	for _, field := range f.Fields() {
		if err := ValidateField(table, field); err != nil {
			return err
		}
	}
	return nil
}

// ValidateField reports ErrInvalidFilter when table has no column named field.
func ValidateField(table *schema.Table, field Field) error {
	if table == nil {
		return fmt.Errorf("%w: no table metadata", ErrInvalidFilter)
	}
	if !table.HasField(string(field)) {
		return fmt.Errorf("%w: %q is not a column of %s", ErrInvalidFilter, field, table.Name)
	}
	return nil
}

// Order sorts results by one field.
type Order struct {
	Field Field
	Desc  bool
}

// Asc orders by field ascending.
func Asc(field Field) Order { return Order{Field: field} }

// Desc orders by field descending.
func Desc(field Field) Order { return Order{Field: field, Desc: true} }

func (o Order) Direction() string {
	if o.Desc {
		return "DESC"
	}
	return "ASC"
}
