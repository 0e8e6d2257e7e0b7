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

package uow

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

// Session is a transactional connection. *bun.Tx satisfies it.
type Session interface {
	bun.IDB
	Commit() error
	Rollback() error
}

// SessionFactory opens a new Session for each unit of work.
type SessionFactory func(ctx context.Context) (Session, error)

// DBSource returns the current database handle, or nil when there is none.
// It is resolved for every session, so a handle replaced by a reconnect is
// picked up by the next unit of work.
type DBSource func() *bun.DB

// Static returns a DBSource that always yields db.
func Static(db *bun.DB) DBSource {
	return func() *bun.DB { return db }
}

// NewSessionFactory returns a SessionFactory beginning transactions on the
// handle returned by source.
func NewSessionFactory(source DBSource, opts *sql.TxOptions) SessionFactory {
	return func(ctx context.Context) (Session, error) {
		db := source()
		if db == nil {
			return nil, errors.New("database not connected")
		}
		tx, err := db.BeginTx(ctx, opts)
		if err != nil {
			return nil, err
		}
		return &tx, nil
	}
}
