// Package datadir provides constants and utilities for the taskremind data directory layout.
package datadir

import (
	"os"
	"path/filepath"
)

const (
	// Dir is the name of the default data directory inside the user's home.
	Dir = ".taskremind"

	// DefaultEmployeesFile is the employee directory file name.
	DefaultEmployeesFile = "employees.json"

	// DefaultTasksDir holds one task file per employee.
	DefaultTasksDir = "tasks"

	// DefaultLedgerFile is the sqlite reminder ledger.
	DefaultLedgerFile = "ledger.db"

	// DefaultHistoryDir holds per-scan JSONL history files.
	DefaultHistoryDir = "history"

	// DefaultTemplatesDir holds reminder template overrides.
	DefaultTemplatesDir = "templates"

	// DefaultConfigFile is the config file name (inside the data dir or a project).
	DefaultConfigFile = "taskremind.toml"
)

// Default returns ~/.taskremind, or .taskremind when the home directory is unknown.
func Default() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return Dir
	}
	return filepath.Join(home, Dir)
}

// EmployeesPath returns the employee directory path within a data directory.
func EmployeesPath(dataDir string) string {
	return filepath.Join(dataDir, DefaultEmployeesFile)
}

// TasksPath returns the task store directory within a data directory.
func TasksPath(dataDir string) string {
	return filepath.Join(dataDir, DefaultTasksDir)
}

// LedgerPath returns the ledger database path within a data directory.
func LedgerPath(dataDir string) string {
	return filepath.Join(dataDir, DefaultLedgerFile)
}

// HistoryPath returns the scan history directory within a data directory.
func HistoryPath(dataDir string) string {
	return filepath.Join(dataDir, DefaultHistoryDir)
}

// ConfigPath returns the config file path within a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, DefaultConfigFile)
}

// Resolve returns p unchanged when absolute, otherwise joined to dataDir.
// An empty p resolves to def inside dataDir.
func Resolve(dataDir, p, def string) string {
	if p == "" {
		p = def
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dataDir, p)
}
