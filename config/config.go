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

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tomoncle/accounts/database"
	"github.com/tomoncle/accounts/utils"
)

// Config is the application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"` // development, production
}

type DatabaseConfig struct {
	Type                string        `mapstructure:"type"` // postgres, mysql, sqlite
	Host                string        `mapstructure:"host"`
	Port                int           `mapstructure:"port"`
	Username            string        `mapstructure:"username"`
	Password            string        `mapstructure:"password"`
	Name                string        `mapstructure:"name"`
	SSLMode             string        `mapstructure:"sslmode"`
	Charset             string        `mapstructure:"charset"`
	MaxOpenConns        int           `mapstructure:"max_open_conns"`
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime     time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime     time.Duration `mapstructure:"conn_max_idle_time"`
	ConnectTimeout      time.Duration `mapstructure:"connect_timeout"`
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`
	EnableReconnect     bool          `mapstructure:"enable_reconnect"`
	ReconnectInterval   time.Duration `mapstructure:"reconnect_interval"`
	MaxReconnectTries   int           `mapstructure:"max_reconnect_tries"`
	QueryLog            bool          `mapstructure:"query_log"`
	ColorQueryLog       bool          `mapstructure:"color_query_log"`
	SlowQueryTime       time.Duration `mapstructure:"slow_query_time"`
	Migrate             MigrateConfig `mapstructure:"migrate"`
}

type MigrateConfig struct {
	OnStartup      bool   `mapstructure:"on_startup"`
	ForeignKeys    bool   `mapstructure:"foreign_keys"`
	ForeignKeyFile string `mapstructure:"foreign_key_file"`
}

type LogConfig struct {
	Level          string `mapstructure:"level"`  // trace, debug, info, warn, error
	Format         string `mapstructure:"format"` // text, json
	FileEnabled    bool   `mapstructure:"file_enabled"`
	FileFormat     string `mapstructure:"file_format"`
	FileDir        string `mapstructure:"file_dir"`
	FileMaxAgeDays int    `mapstructure:"file_max_age_days"`
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Load reads configPath, or config.yaml from . and ./config when empty, and
// applies ACCOUNTS_* environment variables on top. A missing default file is
// not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ACCOUNTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	d := database.DefaultConnectionConfig()

	v.SetDefault("app.name", "accounts")
	v.SetDefault("app.env", "development")

	v.SetDefault("database.type", d.Type)
	v.SetDefault("database.host", d.Host)
	v.SetDefault("database.port", d.Port)
	v.SetDefault("database.username", d.Username)
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", d.DBName)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.max_open_conns", d.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", d.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", d.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", d.ConnMaxIdleTime)
	v.SetDefault("database.connect_timeout", d.ConnectTimeout)
	v.SetDefault("database.health_check_interval", d.HealthCheckInterval)
	v.SetDefault("database.enable_reconnect", d.EnableReconnect)
	v.SetDefault("database.reconnect_interval", d.ReconnectInterval)
	v.SetDefault("database.max_reconnect_tries", d.MaxReconnectTries)
	v.SetDefault("database.query_log", false)
	v.SetDefault("database.color_query_log", false)
	v.SetDefault("database.slow_query_time", d.SlowQueryTime)
	v.SetDefault("database.migrate.on_startup", true)
	v.SetDefault("database.migrate.foreign_keys", false)
	v.SetDefault("database.migrate.foreign_key_file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file_enabled", false)
	v.SetDefault("log.file_format", "json")
	v.SetDefault("log.file_dir", "logs")
	v.SetDefault("log.file_max_age_days", 7)
}

// ConfigLoader converts the database section into a database.Config.
func (c *Config) ConfigLoader() *database.Config {
	conn := database.DefaultConnectionConfig()
	db := c.Database

	conn.Type = db.Type
	conn.Host = db.Host
	conn.Port = db.Port
	conn.Username = db.Username
	conn.Password = db.Password
	conn.DBName = db.Name
	conn.SSLMode = db.SSLMode
	conn.Charset = db.Charset
	conn.MaxOpenConns = db.MaxOpenConns
	conn.MaxIdleConns = db.MaxIdleConns
	conn.ConnMaxLifetime = db.ConnMaxLifetime
	conn.ConnMaxIdleTime = db.ConnMaxIdleTime
	conn.ConnectTimeout = db.ConnectTimeout
	conn.HealthCheckInterval = db.HealthCheckInterval
	conn.EnableReconnect = db.EnableReconnect
	conn.ReconnectInterval = db.ReconnectInterval
	conn.MaxReconnectTries = db.MaxReconnectTries
	conn.EnableQueryLog = db.QueryLog || db.ColorQueryLog
	conn.ColorQueryLog = db.ColorQueryLog
	conn.SlowQueryTime = db.SlowQueryTime

	return &database.Config{
		ConnectionConfig: *conn,
		DataMigrateConfig: database.DataMigrateConfig{
			EnableMigrateOnStartup: db.Migrate.OnStartup,
			EnableForeignKey:       db.Migrate.ForeignKeys,
			ForeignKeyFile:         db.Migrate.ForeignKeyFile,
		},
	}
}

// ApplyLogging configures the process-wide loggers from the log section.
func (c *Config) ApplyLogging() {
	utils.Configure(utils.LogOptions{
		Level:          c.Log.Level,
		ConsoleFormat:  c.Log.Format,
		FileEnabled:    c.Log.FileEnabled,
		FileFormat:     c.Log.FileFormat,
		FileDir:        c.Log.FileDir,
		FileMaxAgeDays: c.Log.FileMaxAgeDays,
	})
}
