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

package models

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/tomoncle/accounts/types"
)

// Columns shared by every entity.
const (
	FieldID        types.Field = "id"
	FieldEnabled   types.Field = "enabled"
	FieldCreatedAt types.Field = "created_at"
	FieldUpdatedAt types.Field = "updated_at"
)

// TableBase carries identity, the soft-delete flag and timestamps.
type TableBase struct {
	ID        string    `bun:"id,pk,type:varchar(36)" json:"id"`
	Enabled   bool      `bun:"enabled,notnull" json:"enabled"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

var _ bun.BeforeAppendModelHook = (*TableBase)(nil)

// BeforeAppendModel assigns the id, enables the row and stamps times on
// insert. Updates only refresh updated_at.
func (m *TableBase) BeforeAppendModel(_ context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.Enabled = true
		m.CreatedAt = now
		m.UpdatedAt = now
	case *bun.UpdateQuery:
		m.UpdatedAt = now
	}
	return nil
}

// NormalizeUsername lower-cases and trims a username before it is stored or
// compared.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
