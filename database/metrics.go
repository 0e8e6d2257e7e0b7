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
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Transaction outcomes recorded by Metrics.
const (
	OutcomeCommitted    = "committed"
	OutcomeRolledBack   = "rolled_back"
	OutcomeCommitFailed = "commit_failed"
	OutcomeBeginFailed  = "begin_failed"
)

// Metrics holds the Prometheus collectors for unit-of-work transactions.
type Metrics struct {
	transactions *prometheus.CounterVec
	duration     prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_unit_of_work_total",
				Help: "Total number of unit-of-work scopes by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "accounts_unit_of_work_duration_seconds",
				Help:    "Time between begin and commit or rollback of a unit of work",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	if registry != nil {
		registry.MustRegister(m.transactions, m.duration)
	}
	return m
}

// RecordTransaction counts one finished unit of work.
func (m *Metrics) RecordTransaction(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(outcome).Inc()
	if outcome != OutcomeBeginFailed {
		m.duration.Observe(seconds)
	}
}

// Transactions exposes the outcome counter, mainly for tests.
func (m *Metrics) Transactions() *prometheus.CounterVec {
	return m.transactions
}

// RegisterPoolMetrics exports database/sql pool statistics of the factory's
// connection under db_name.
func (f *BaseDatabaseFactory) RegisterPoolMetrics(registry prometheus.Registerer, dbName string) error {
	if f.manager == nil || f.manager.GetSQLDB() == nil {
		return fmt.Errorf("database not initialized")
	}
	return registry.Register(collectors.NewDBStatsCollector(f.manager.GetSQLDB(), dbName))
}
