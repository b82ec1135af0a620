package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/nibzard/taskremind/internal/datadir"
)

var envKeys = []string{
	"TASKREMIND_DATA_DIR", "TASKREMIND_EMPLOYEES", "TASKREMIND_TASKS_DIR",
	"TASKREMIND_NOTIFIER", "TASKREMIND_LANGUAGE", "TASKREMIND_LEDGER",
	"TASKREMIND_HISTORY_DIR", "TASKREMIND_SCHEDULE", "TASKREMIND_LISTEN",
	"TASKREMIND_LOG_LEVEL", "TASKREMIND_LOG_FORMAT", "TASKREMIND_SMTP_SERVER",
	"TASKREMIND_SMTP_USERNAME", "TASKREMIND_SMTP_FROM", "TASKREMIND_SMTP_FROM_NAME",
	"TASKREMIND_SMTP_SUBJECT", "TASKREMIND_SMTP_SECURITY", "SMTP_PASSWORD",
	"TASKREMIND_SMTP_PASSWORD", "SLACK_BOT_TOKEN", "TASKREMIND_SLACK_BOT_TOKEN",
	"TASKREMIND_DEDUPE", "TASKREMIND_HISTORY", "TASKREMIND_LOG_TIMESTAMPS",
	"TASKREMIND_LOG_CALLER", "TASKREMIND_SMTP_SKIP_TLS_VERIFY", "TASKREMIND_SMTP_PORT",
	"TASKREMIND_CONCURRENCY", "TASKREMIND_TEMPLATES_DIR",
}

// isolate points HOME and the config dirs at fresh temp dirs, clears every
// variable the loader reads, and moves into an empty working directory.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	work = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Chdir(work)
	return home, work
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("taskremind", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.Notifier != NotifierLog {
		t.Errorf("Notifier: got %q, want log", cfg.Notifier)
	}
	if cfg.Language != "en" {
		t.Errorf("Language: got %q, want en", cfg.Language)
	}
	if cfg.Schedule != DefaultSchedule {
		t.Errorf("Schedule: got %q, want %q", cfg.Schedule, DefaultSchedule)
	}
	if !cfg.History || cfg.Dedupe {
		t.Errorf("History/Dedupe: got %v/%v, want true/false", cfg.History, cfg.Dedupe)
	}
	if filepath.Base(cfg.DataDir) != datadir.Dir {
		t.Errorf("DataDir: got %q", cfg.DataDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadDefaultsResolvePaths(t *testing.T) {
	home, _ := isolate(t)

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wantData := filepath.Join(home, datadir.Dir)
	if cfg.DataDir != wantData {
		t.Errorf("DataDir: got %q, want %q", cfg.DataDir, wantData)
	}
	if cfg.EmployeesFile != filepath.Join(wantData, "employees.json") {
		t.Errorf("EmployeesFile: got %q", cfg.EmployeesFile)
	}
	if cfg.TasksDir != filepath.Join(wantData, "tasks") {
		t.Errorf("TasksDir: got %q", cfg.TasksDir)
	}
	if cfg.LedgerFile != filepath.Join(wantData, "ledger.db") {
		t.Errorf("LedgerFile: got %q", cfg.LedgerFile)
	}
	if len(cfg.ConfigFiles) != 0 {
		t.Errorf("ConfigFiles: got %v, want none", cfg.ConfigFiles)
	}
}

func TestLoadLayering(t *testing.T) {
	home, work := isolate(t)

	userDir := filepath.Join(home, datadir.Dir)
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		t.Fatal(err)
	}
	user := `language = "es"
schedule = "0 30 7 * * *"
listen_addr = "127.0.0.1:9000"
log_level = "debug"
`
	if err := os.WriteFile(filepath.Join(userDir, "taskremind.toml"), []byte(user), 0o644); err != nil {
		t.Fatal(err)
	}

	project := `schedule = "0 0 9 * * *"
listen_addr = "127.0.0.1:9100"
notifier = "slack"
`
	if err := os.WriteFile(filepath.Join(work, "taskremind.toml"), []byte(project), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TASKREMIND_LISTEN", "127.0.0.1:9200")
	t.Setenv("TASKREMIND_LOG_LEVEL", "warn")

	cfg, err := Load(newFlagSet(), []string{"--log-level", "error", "remind"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"user file only", cfg.Language, "es"},
		{"project overrides user", cfg.Schedule, "0 0 9 * * *"},
		{"project sets notifier", cfg.Notifier, "slack"},
		{"env overrides project", cfg.ListenAddr, "127.0.0.1:9200"},
		{"flag overrides env", cfg.LogLevel, "error"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
	if len(cfg.ConfigFiles) != 2 {
		t.Errorf("ConfigFiles: got %v, want user and project", cfg.ConfigFiles)
	}
}

func TestLoadLeavesSubcommandArgs(t *testing.T) {
	isolate(t)
	fs := newFlagSet()
	if _, err := Load(fs, []string{"--dedupe", "task", "list", "janed"}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(fs.Args(), " "); got != "task list janed" {
		t.Errorf("remaining args = %q", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	_, work := isolate(t)
	content := "SMTP_PASSWORD=from-dotenv\nSLACK_BOT_TOKEN=xoxb-dotenv\n"
	if err := os.WriteFile(filepath.Join(work, ".env"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-real")

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SMTP.Password != "from-dotenv" {
		t.Errorf("SMTP.Password: got %q, want from-dotenv", cfg.SMTP.Password)
	}
	if cfg.Slack.Token != "xoxb-real" {
		t.Errorf(".env must not override the environment: got %q", cfg.Slack.Token)
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TASKREMIND_DEDUPE", "yes")
	t.Setenv("TASKREMIND_HISTORY", "0")
	t.Setenv("TASKREMIND_SMTP_PORT", "2525")
	t.Setenv("TASKREMIND_CONCURRENCY", "4")
	t.Setenv("SMTP_PASSWORD", "generic")
	t.Setenv("TASKREMIND_SMTP_PASSWORD", "specific")

	cfg := &Config{}
	setDefaults(cfg)
	if err := loadFromEnv(cfg); err != nil {
		t.Fatal(err)
	}
	if !cfg.Dedupe || cfg.History {
		t.Errorf("Dedupe/History: got %v/%v", cfg.Dedupe, cfg.History)
	}
	if cfg.SMTP.Port != 2525 {
		t.Errorf("SMTP.Port: got %d", cfg.SMTP.Port)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency: got %d", cfg.Concurrency)
	}
	if cfg.SMTP.Password != "specific" {
		t.Errorf("prefixed variable should win: got %q", cfg.SMTP.Password)
	}

	t.Setenv("TASKREMIND_SMTP_PORT", "smtp")
	if err := loadFromEnv(cfg); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	_, work := isolate(t)
	if err := os.WriteFile(filepath.Join(work, ".taskremind.toml"), []byte("notifier = \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(newFlagSet(), nil); err == nil || !strings.Contains(err.Error(), "project config") {
		t.Errorf("expected project config error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown notifier", func(c *Config) { c.Notifier = "pigeon" }, "Notifier"},
		{"unknown language", func(c *Config) { c.Language = "fr" }, "Language"},
		{"bad listen addr", func(c *Config) { c.ListenAddr = "nowhere" }, "ListenAddr"},
		{"empty schedule", func(c *Config) { c.Schedule = "" }, "Schedule"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "LogFormat"},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, "Concurrency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			setDefaults(cfg)
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestValidateNotifier(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	if err := cfg.ValidateNotifier(); err != nil {
		t.Errorf("log notifier needs no settings: %v", err)
	}

	cfg.Notifier = NotifierSMTP
	if err := cfg.ValidateNotifier(); err == nil || !strings.Contains(err.Error(), "Server") {
		t.Errorf("smtp without server: %v", err)
	}
	cfg.SMTP.Server = "smtp.example.com"
	cfg.SMTP.FromEmail = "not-an-address"
	if err := cfg.ValidateNotifier(); err == nil || !strings.Contains(err.Error(), "FromEmail") {
		t.Errorf("smtp with bad from: %v", err)
	}
	cfg.SMTP.FromEmail = "bot@example.com"
	if err := cfg.ValidateNotifier(); err != nil {
		t.Errorf("valid smtp config: %v", err)
	}

	cfg.Notifier = NotifierSlack
	if err := cfg.ValidateNotifier(); err == nil {
		t.Error("slack without token should fail")
	}
	cfg.Slack.Token = "xoxb-1"
	if err := cfg.ValidateNotifier(); err != nil {
		t.Errorf("valid slack config: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/data", filepath.Join(home, "data")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
		{"", ""},
	}
	if runtime.GOOS != "windows" {
		tests = append(tests, struct {
			input string
			want  string
		}{`~\data`, `~\data`})
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := expandPath(tt.input); got != tt.want {
				t.Errorf("expandPath(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandWindowsEnv(t *testing.T) {
	t.Setenv("TASKREMIND_TEST_DIR", "C:\\data")
	tests := []struct {
		input string
		want  string
	}{
		{`%TASKREMIND_TEST_DIR%\tasks`, `C:\data\tasks`},
		{`%TASKREMIND_UNSET_VAR%\x`, `%TASKREMIND_UNSET_VAR%\x`},
		{`100%`, `100%`},
		{`plain`, `plain`},
	}
	for _, tt := range tests {
		if got := expandWindowsEnv(tt.input); got != tt.want {
			t.Errorf("expandWindowsEnv(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBoolFromString(t *testing.T) {
	for _, s := range []string{"1", "true", "TRUE", "yes", "on", " y "} {
		if !boolFromString(s) {
			t.Errorf("boolFromString(%q) = false", s)
		}
	}
	for _, s := range []string{"0", "false", "no", "", "maybe"} {
		if boolFromString(s) {
			t.Errorf("boolFromString(%q) = true", s)
		}
	}
}

func TestExampleConfigParses(t *testing.T) {
	_, work := isolate(t)
	if err := os.WriteFile(filepath.Join(work, "taskremind.toml"), []byte(ExampleConfig()), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("example config should load: %v", err)
	}
	if cfg.SMTP.Port != 587 || cfg.SMTP.FromName != "Task reminders" {
		t.Errorf("SMTP section not decoded: %+v", cfg.SMTP)
	}
}
