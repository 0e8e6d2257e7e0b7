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
	"fmt"
	"sync"
	"time"

	"github.com/tomoncle/accounts/database"
	"github.com/tomoncle/accounts/repository"
)

var (
	// ErrTransactionFailure wraps errors returned by the session on commit.
	ErrTransactionFailure = errors.New("transaction failure")
	// ErrInvalidState is returned for transitions out of a terminal state.
	ErrInvalidState = errors.New("invalid unit of work state")
)

var defaultLogger = sync.OnceValue(func() database.Logger {
	return database.NewNamedLogger("UOW")
})

type State int

const (
	StateCreated State = iota
	StateActive
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "created"
	}
}

// UnitOfWork binds the repositories to one session. The repositories are
// usable between Begin and Commit or Rollback. A UnitOfWork is single use
// and not safe for concurrent use.
type UnitOfWork struct {
	Users    repository.UserRepository
	Profiles repository.ProfileRepository

	factory SessionFactory
	session Session
	state   State
	started time.Time
	// set once a commit failed, so the scope is counted only once
	commitFailed bool
	logger       database.Logger
	metrics      *database.Metrics
}

type Option func(*UnitOfWork)

func WithLogger(logger database.Logger) Option {
	return func(u *UnitOfWork) {
		if logger != nil {
			u.logger = logger
		}
	}
}

func WithMetrics(metrics *database.Metrics) Option {
	return func(u *UnitOfWork) {
		u.metrics = metrics
	}
}

// New returns a UnitOfWork in StateCreated.
func New(factory SessionFactory, opts ...Option) *UnitOfWork {
	u := &UnitOfWork{factory: factory, logger: defaultLogger()}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *UnitOfWork) State() State { return u.state }

// Begin opens the session and binds the repositories to it.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.state != StateCreated {
		return fmt.Errorf("%w: begin in state %s", ErrInvalidState, u.state)
	}
	if u.factory == nil {
		return fmt.Errorf("session factory cannot be empty")
	}

	session, err := u.factory(ctx)
	if err != nil {
		u.metrics.RecordTransaction(database.OutcomeBeginFailed, 0)
		return fmt.Errorf("begin unit of work: %w", err)
	}

	u.session = session
	u.Users = repository.NewUserRepository(session)
	u.Profiles = repository.NewProfileRepository(session)
	u.started = time.Now()
	u.state = StateActive
	u.logger.Debug("Unit of work started")
	return nil
}

// Commit makes every write of the unit durable. On failure the state stays
// active so that Close still rolls back.
func (u *UnitOfWork) Commit() error {
	if u.state != StateActive {
		return fmt.Errorf("%w: commit in state %s", ErrInvalidState, u.state)
	}
	if err := u.session.Commit(); err != nil {
		u.commitFailed = true
		u.metrics.RecordTransaction(database.OutcomeCommitFailed, time.Since(u.started).Seconds())
		u.logger.Error("Unit of work commit failed", "error", err)
		return fmt.Errorf("%w: %w", ErrTransactionFailure, err)
	}
	u.state = StateCommitted
	u.metrics.RecordTransaction(database.OutcomeCommitted, time.Since(u.started).Seconds())
	u.logger.Debug("Unit of work committed", "elapsed", time.Since(u.started))
	return nil
}

// Rollback discards every write of the unit. It is a no-op unless active.
func (u *UnitOfWork) Rollback() error {
	if u.state != StateActive {
		return nil
	}
	err := u.session.Rollback()
	u.state = StateRolledBack
	if !u.commitFailed {
		u.metrics.RecordTransaction(database.OutcomeRolledBack, time.Since(u.started).Seconds())
	}
	if err != nil {
		u.logger.Warn("Unit of work rollback failed", "error", err)
		return err
	}
	u.logger.Debug("Unit of work rolled back")
	return nil
}

// Close is the exit action: it rolls back unless the unit already reached a
// terminal state. A transaction already finished by a failed commit is not
// reported.
func (u *UnitOfWork) Close() error {
	if err := u.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// WithUnitOfWork runs fn inside a new unit of work. It commits when fn
// returns nil and the unit is still active, and rolls back when fn returns an
// error or panics. A failed rollback is combined with fn's error.
func WithUnitOfWork(ctx context.Context, factory SessionFactory, fn func(ctx context.Context, u *UnitOfWork) error, opts ...Option) (err error) {
	u := New(factory, opts...)
	if err := u.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = u.Close()
			panic(p)
		}
		if rbErr := u.Close(); rbErr != nil {
			if err == nil {
				err = rbErr
				return
			}
			err = fmt.Errorf("transaction rollback error: %v, original error: %w", rbErr, err)
		}
	}()

	if err := fn(ctx, u); err != nil {
		return err
	}
	if u.State() == StateActive {
		return u.Commit()
	}
	return nil
}
