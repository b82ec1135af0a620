package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DotEnvFile is read from the working directory before the environment.
const DotEnvFile = ".env"

// loadDotEnv copies variables from path into the process environment
// without overriding ones that are already set. A missing file is fine.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) error {
	str := map[string]*string{
		"TASKREMIND_DATA_DIR":        &cfg.DataDir,
		"TASKREMIND_EMPLOYEES":       &cfg.EmployeesFile,
		"TASKREMIND_TASKS_DIR":       &cfg.TasksDir,
		"TASKREMIND_NOTIFIER":        &cfg.Notifier,
		"TASKREMIND_LANGUAGE":        &cfg.Language,
		"TASKREMIND_LEDGER":          &cfg.LedgerFile,
		"TASKREMIND_HISTORY_DIR":     &cfg.HistoryDir,
		"TASKREMIND_TEMPLATES_DIR":   &cfg.TemplatesDir,
		"TASKREMIND_SCHEDULE":        &cfg.Schedule,
		"TASKREMIND_LISTEN":          &cfg.ListenAddr,
		"TASKREMIND_LOG_LEVEL":       &cfg.LogLevel,
		"TASKREMIND_LOG_FORMAT":      &cfg.LogFormat,
		"TASKREMIND_SMTP_SERVER":     &cfg.SMTP.Server,
		"TASKREMIND_SMTP_USERNAME":   &cfg.SMTP.Username,
		"TASKREMIND_SMTP_FROM":       &cfg.SMTP.FromEmail,
		"TASKREMIND_SMTP_FROM_NAME":  &cfg.SMTP.FromName,
		"TASKREMIND_SMTP_SUBJECT":    &cfg.SMTP.Subject,
		"TASKREMIND_SMTP_SECURITY":   &cfg.SMTP.Security,
		"SMTP_PASSWORD":              &cfg.SMTP.Password,
		"TASKREMIND_SMTP_PASSWORD":   &cfg.SMTP.Password,
		"SLACK_BOT_TOKEN":            &cfg.Slack.Token,
		"TASKREMIND_SLACK_BOT_TOKEN": &cfg.Slack.Token,
	}
	// Prefixed names are applied last so they win over the generic ones.
	for _, key := range sortedKeys(str) {
		if v := os.Getenv(key); v != "" {
			*str[key] = v
		}
	}

	flags := map[string]*bool{
		"TASKREMIND_DEDUPE":               &cfg.Dedupe,
		"TASKREMIND_HISTORY":              &cfg.History,
		"TASKREMIND_LOG_TIMESTAMPS":       &cfg.LogTimestamps,
		"TASKREMIND_LOG_CALLER":           &cfg.LogCaller,
		"TASKREMIND_SMTP_SKIP_TLS_VERIFY": &cfg.SMTP.SkipTLSVerify,
	}
	for key, target := range flags {
		if v := os.Getenv(key); v != "" {
			*target = boolFromString(v)
		}
	}

	if v := os.Getenv("TASKREMIND_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("TASKREMIND_CONCURRENCY: %w", err)
		}
		cfg.Concurrency = n
	}

	if v := os.Getenv("TASKREMIND_SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("TASKREMIND_SMTP_PORT: %w", err)
		}
		cfg.SMTP.Port = port
	}
	return nil
}

func sortedKeys(m map[string]*string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Unprefixed names first.
	sort.Slice(keys, func(i, j int) bool {
		pi, pj := strings.HasPrefix(keys[i], "TASKREMIND_"), strings.HasPrefix(keys[j], "TASKREMIND_")
		if pi != pj {
			return !pi
		}
		return keys[i] < keys[j]
	})
	return keys
}

func boolFromString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
