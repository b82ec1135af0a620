package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/nibzard/taskremind/internal/datadir"
)

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	names := []string{datadir.DefaultConfigFile, "." + datadir.DefaultConfigFile}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.taskremind/taskremind.toml first, then falls back to OS-specific
// config directories.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := datadir.ConfigPath(filepath.Join(home, datadir.Dir))
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		userConfigPath := filepath.Join(cfgDir, "taskremind", datadir.DefaultConfigFile)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataDir = datadir.Default()
	cfg.EmployeesFile = datadir.DefaultEmployeesFile
	cfg.TasksDir = datadir.DefaultTasksDir
	cfg.Notifier = DefaultNotifier
	cfg.Language = DefaultLanguage
	cfg.LedgerFile = datadir.DefaultLedgerFile
	cfg.History = true
	cfg.HistoryDir = datadir.DefaultHistoryDir
	cfg.TemplatesDir = datadir.DefaultTemplatesDir
	cfg.Concurrency = DefaultConcurrency
	cfg.Schedule = DefaultSchedule
	cfg.ListenAddr = DefaultListenAddr
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.SMTP.Security = "starttls"
}
