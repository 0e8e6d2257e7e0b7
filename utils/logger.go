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

package utils

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type Logger = logrus.Logger

const defaultTimestampFormat = "2006-01-02 15:04:05.000"

// LogOptions configures every logger created by NewLogger.
type LogOptions struct {
	Level          string
	ConsoleFormat  string // text, json
	FileEnabled    bool
	FileFormat     string // text, json
	FileDir        string
	FileMaxAgeDays int
}

var (
	settingsMu       sync.RWMutex
	consoleLevel               = logrus.DebugLevel
	fileLevel                  = logrus.TraceLevel
	consoleFormat              = normalizeFormat(EnvDefaultString("CONSOLE_LOG_FORMAT", "text"))
	fileFormat                 = normalizeFormat(EnvDefaultString("FILE_LOG_FORMAT", "text"))
	fileEnabled                = EnvDefaultBool("FILE_LOG_ENABLED", false)
	fileDir                    = EnvDefaultString("FILE_LOG_DIR", "logs")
	fileMaxAgeDays             = 0
	consoleOutput    io.Writer = os.Stdout
	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}
)

// Configure applies opts to the defaults used by NewLogger and re-levels the
// loggers that already exist.
func Configure(opts LogOptions) {
	settingsMu.Lock()
	if opts.Level != "" {
		lvl := ParseLogLevel(opts.Level)
		consoleLevel, fileLevel = lvl, lvl
	}
	if opts.ConsoleFormat != "" {
		consoleFormat = normalizeFormat(opts.ConsoleFormat)
	}
	if opts.FileFormat != "" {
		fileFormat = normalizeFormat(opts.FileFormat)
	}
	if opts.FileDir != "" {
		fileDir = opts.FileDir
	}
	if opts.FileMaxAgeDays >= 0 {
		fileMaxAgeDays = opts.FileMaxAgeDays
	}
	fileEnabled = opts.FileEnabled
	settingsMu.Unlock()
	applyBaseLevel()
}

// SetConsoleOutput redirects console output of all loggers, mostly for tests.
func SetConsoleOutput(w io.Writer) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	consoleOutput = w
}

func normalizeFormat(format string) string {
	if strings.ToLower(strings.TrimSpace(format)) == "json" {
		return "json"
	}
	return "text"
}

// ParseLogLevel converts a level name into a logrus level, defaulting to info.
func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

// ConfigureLogLevel sets both console and file levels.
func ConfigureLogLevel(levelStr string) {
	lvl := ParseLogLevel(levelStr)
	settingsMu.Lock()
	consoleLevel, fileLevel = lvl, lvl
	settingsMu.Unlock()
	applyBaseLevel()
}

// SetLoggerLevel changes the level of one named logger. It reports whether
// the logger exists.
func SetLoggerLevel(name string, lvlStr string) bool {
	loggerRegistryMu.RLock()
	lg, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return false
	}
	lg.SetLevel(ParseLogLevel(lvlStr))
	return true
}

// GetLogger returns a registered logger by name.
func GetLogger(name string) (*logrus.Logger, bool) {
	loggerRegistryMu.RLock()
	defer loggerRegistryMu.RUnlock()
	lg, ok := loggerRegistry[name]
	return lg, ok
}

func baseLevel() logrus.Level {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	if consoleLevel >= fileLevel {
		return consoleLevel
	}
	return fileLevel
}

func applyBaseLevel() {
	base := baseLevel()
	loggerRegistryMu.RLock()
	for _, lg := range loggerRegistry {
		lg.SetLevel(base)
	}
	loggerRegistryMu.RUnlock()
	logrus.SetLevel(base)
}

// consoleHook writes entries to the console writer. The logger itself writes
// to io.Discard so console and file output can use different levels.
type consoleHook struct {
	formatter logrus.Formatter
}

func (h *consoleHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *consoleHook) Fire(e *logrus.Entry) error {
	settingsMu.RLock()
	lvl, w := consoleLevel, consoleOutput
	settingsMu.RUnlock()
	if e.Level > lvl {
		return nil
	}
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// NewLogger creates and registers a named logger. Calling it twice with the
// same name returns the registered instance.
func NewLogger(name string) *logrus.Logger {
	if lg, ok := GetLogger(name); ok {
		return lg
	}

	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(baseLevel())
	l.SetReportCaller(true)

	settingsMu.RLock()
	cf, ff, fe, dir, maxAge := consoleFormat, fileFormat, fileEnabled, fileDir, fileMaxAgeDays
	settingsMu.RUnlock()

	l.SetFormatter(newFormatter(name, cf, PathFormatShortRelative, true))
	l.AddHook(&consoleHook{formatter: l.Formatter})
	if fe {
		_ = AddDailyRollingFileHook(l, newFormatter(name, ff, PathFormatFullRelative, false), dir, maxAge)
	}

	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	if existing, ok := loggerRegistry[name]; ok {
		return existing
	}
	loggerRegistry[name] = l
	return l
}

func newFormatter(name, format string, pathFmt PathFormat, colored bool) logrus.Formatter {
	if format == "json" {
		return &JSONLogFormatter{LoggerName: name, TimestampFormat: defaultTimestampFormat, PathFmt: pathFmt}
	}
	return &Log4jColorFormatter{
		LoggerName:      name,
		TimestampFormat: defaultTimestampFormat,
		PathFmt:         pathFmt,
		Colored:         colored,
		NameWidth:       10,
	}
}

func EnvDefaultString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
	return def
}
