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
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomoncle/accounts"
	"github.com/tomoncle/accounts/config"
	"github.com/tomoncle/accounts/database"
	_ "github.com/tomoncle/accounts/models"
	"github.com/tomoncle/accounts/types"
	"github.com/tomoncle/accounts/uow"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	migrate := flag.Bool("migrate", false, "run table migrations even if disabled in config")
	metricsAddr := flag.String("metrics-addr", "", "serve pool and unit-of-work metrics on this address until interrupted")
	flag.Parse()

	if err := run(*configPath, *migrate, *metricsAddr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, migrate bool, metricsAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.ApplyLogging()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dbCfg := cfg.ConfigLoader()
	factory, err := database.OpenWithOptions(ctx, dbCfg, migrate || dbCfg.DataMigrateConfig.EnableMigrateOnStartup)
	if err != nil {
		return err
	}
	defer factory.Close() //nolint:errcheck

	registry := prometheus.NewRegistry()
	if err := factory.RegisterPoolMetrics(registry, cfg.Database.Name); err != nil {
		return err
	}
	service := newService(factory, registry)

	report := struct {
		App    string                 `json:"app"`
		Health *database.HealthStatus `json:"health"`
		Stats  *database.DBStats      `json:"stats"`
		Users  *int                   `json:"users,omitempty"`
	}{
		App:    cfg.App.Name,
		Health: factory.GetHealthStatus(ctx),
		Stats:  factory.GetStats(),
	}

	// tables only exist once migrated
	if page, err := service.PageUsers(ctx, types.NewDefaultPageRequest(1, 1)); err != nil {
		database.NewNamedLogger("CLI").Warn("Failed to count users", "error", err)
	} else {
		report.Users = &page.Total
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}

	if metricsAddr == "" {
		return nil
	}
	return serveMetrics(metricsAddr, registry)
}

// newService opens units of work on the factory's current connection and
// counts them in registry.
func newService(factory *database.BaseDatabaseFactory, registry prometheus.Registerer) accounts.Service {
	return accounts.NewService(
		uow.NewSessionFactory(factory.GetDB, nil),
		uow.WithMetrics(database.NewMetrics(registry)),
	)
}

func serveMetrics(addr string, registry *prometheus.Registry) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
