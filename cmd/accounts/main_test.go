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

package main

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/accounts/database"
	"github.com/tomoncle/accounts/types"
)

func TestNewService_ExportsUnitOfWorkMetrics(t *testing.T) {
	ctx := context.Background()
	factory, err := database.OpenWithOptions(ctx, &database.Config{
		ConnectionConfig: database.ConnectionConfig{Type: database.TypeSQLite, DBName: ":memory:"},
	}, true)
	require.NoError(t, err)
	defer factory.Close() //nolint:errcheck

	registry := prometheus.NewRegistry()
	require.NoError(t, factory.RegisterPoolMetrics(registry, "accounts"))

	page, err := newService(factory, registry).PageUsers(ctx, types.NewDefaultPageRequest(1, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)

	count, err := testutil.GatherAndCount(registry, "accounts_unit_of_work_total", "go_sql_open_connections")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
