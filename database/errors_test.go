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

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsSqlError(t *testing.T) {
	tcs := map[string]struct {
		err  error
		is   bool
		kind SQLError
	}{
		"nil":             {err: nil, is: false, kind: UnknownErr},
		"no-rows":         {err: fmt.Errorf("scan: %w", sql.ErrNoRows), is: true, kind: NoRowsErr},
		"mysql-duplicate": {err: &mysql.MySQLError{Number: 1062}, is: true, kind: DuplicateKeyErr},
		"mysql-fk":        {err: &mysql.MySQLError{Number: 1452}, is: true, kind: ForeignKeyViolationErr},
		"mysql-unknown":   {err: &mysql.MySQLError{Number: 9999}, is: true, kind: UnknownErr},
		"pq-duplicate":    {err: &pq.Error{Code: "23505"}, is: true, kind: DuplicateKeyErr},
		"pq-no-table":     {err: fmt.Errorf("query: %w", &pq.Error{Code: "42P01"}), is: true, kind: NoTableErr},
		"pq-not-null":     {err: &pq.Error{Code: "23502"}, is: true, kind: NotNullViolationErr},
		"sqlite-unique":   {err: errors.New("UNIQUE constraint failed: users.username"), is: true, kind: DuplicateKeyErr},
		"sqlite-no-table": {err: errors.New("SQL logic error: no such table: users (1)"), is: true, kind: NoTableErr},
		"sqlite-fk":       {err: errors.New("FOREIGN KEY constraint failed"), is: true, kind: ForeignKeyViolationErr},
		"table-exists":    {err: errors.New(`relation "users" already exists`), is: true, kind: ExistTableErr},
		"unrelated":       {err: errors.New("connection refused"), is: false, kind: UnknownErr},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			is, kind := IsSqlError(tc.err)

			assert.Equal(t, tc.is, is)
			assert.Equal(t, tc.kind, kind, kind.String())
		})
	}
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(&pq.Error{Code: "23505"}))
	assert.False(t, IsDuplicateKey(&pq.Error{Code: "23503"}))
	assert.False(t, IsDuplicateKey(nil))
}
