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
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+" "+msg)
}

func (l *recordingLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		_, msg, _ := strings.Cut(e, " ")
		out[i] = msg
	}
	return out
}

func (l *recordingLogger) SetLevel(LogLevel)                  {}
func (l *recordingLogger) Debug(msg string, _ ...interface{}) { l.record("DEBUG", msg) }
func (l *recordingLogger) Info(msg string, _ ...interface{})  { l.record("INFO", msg) }
func (l *recordingLogger) Warn(msg string, _ ...interface{})  { l.record("WARN", msg) }
func (l *recordingLogger) Error(msg string, _ ...interface{}) { l.record("ERROR", msg) }

func TestQueryHook(t *testing.T) {
	failed := &bun.QueryEvent{Query: "SELECT * FROM missing", StartTime: time.Now(), Err: errors.New("no such table: missing")}
	ok := &bun.QueryEvent{Query: "UPDATE users SET enabled = FALSE", StartTime: time.Now()}

	tcs := map[string]struct {
		env    string
		events []*bun.QueryEvent
		want   []string
		absent []string
	}{
		"off": {
			env:    "0",
			events: []*bun.QueryEvent{failed, ok},
			absent: []string{"SELECT", "UPDATE"},
		},
		"errors-only": {
			env:    "1",
			events: []*bun.QueryEvent{failed, ok},
			want:   []string{"SELECT * FROM missing", "no such table"},
			absent: []string{"UPDATE"},
		},
		"verbose": {
			env:    "2",
			events: []*bun.QueryEvent{failed, ok},
			want:   []string{"SELECT * FROM missing", "UPDATE users SET enabled = FALSE", "[BUN]"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Setenv(queryHookEnv, tc.env)
			var buf bytes.Buffer
			hook := NewQueryHook(&buf, false)

			for _, e := range tc.events {
				hook.AfterQuery(context.Background(), e)
			}

			for _, s := range tc.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tc.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestQueryHook_Silent(t *testing.T) {
	t.Setenv(queryHookEnv, "2")
	var buf bytes.Buffer
	hook := NewQueryHook(&buf, true)

	EnableBunSqlSilent(true)
	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now()})
	EnableBunSqlSilent(false)

	assert.Empty(t, buf.String())
}

func TestSlowQueryHook(t *testing.T) {
	logger := &recordingLogger{}
	hook := NewSlowQueryHook(100*time.Millisecond, logger)

	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now()})
	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT 2", StartTime: time.Now().Add(-time.Second)})
	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT 3", StartTime: time.Now().Add(-time.Second), Err: errors.New("boom")})

	assert.Equal(t, []string{"Database slow query detected"}, logger.messages())
}

func TestModelRegistry_Order(t *testing.T) {
	type parent struct{ ID int }
	type child struct{ ID int }
	type other struct{ ID int }

	registry := NewModelRegistry()
	registry.Register(NewModelAdapter((*child)(nil), 20))
	registry.Register(NewModelAdapter((*other)(nil), 10))
	registry.Register(NewModelAdapter((*parent)(nil), 10))
	registry.Register(NewModelAdapter((*child)(nil), 30))

	models := registry.Models()

	require.Len(t, models, 3)
	assert.IsType(t, (*other)(nil), models[0].Instance())
	assert.IsType(t, (*parent)(nil), models[1].Instance())
	assert.IsType(t, (*child)(nil), models[2].Instance())
	assert.Equal(t, 30, models[2].Priority())
}

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	metrics.RecordTransaction(OutcomeCommitted, 0.01)
	metrics.RecordTransaction(OutcomeCommitted, 0.02)
	metrics.RecordTransaction(OutcomeBeginFailed, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Transactions().WithLabelValues(OutcomeCommitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Transactions().WithLabelValues(OutcomeBeginFailed)))
	count, err := testutil.GatherAndCount(registry, "accounts_unit_of_work_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.RecordTransaction(OutcomeCommitted, 1) })
}

func TestRegisterPoolMetrics(t *testing.T) {
	clearDBEnv(t)
	registry := prometheus.NewRegistry()

	assert.Error(t, NewDatabaseFactory().RegisterPoolMetrics(registry, "accounts"))

	factory, err := OpenWithOptions(context.Background(), sqliteMemoryConfig(), false)
	require.NoError(t, err)
	defer factory.Close() //nolint:errcheck

	require.NoError(t, factory.RegisterPoolMetrics(registry, "accounts"))
	count, err := testutil.GatherAndCount(registry, "go_sql_max_open_connections")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
