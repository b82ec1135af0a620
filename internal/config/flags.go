package config

import (
	"flag"
)

// parseFlags defines and parses the global CLI flags.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("taskremind", flag.ContinueOnError)
	}

	// Storage
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Data directory")
	fs.StringVar(&cfg.EmployeesFile, "employees", cfg.EmployeesFile, "Employee directory file (relative to data dir)")
	fs.StringVar(&cfg.TasksDir, "tasks-dir", cfg.TasksDir, "Task store directory (relative to data dir)")

	// Reminders
	fs.StringVar(&cfg.Notifier, "notifier", cfg.Notifier, "Notifier (smtp|slack|log)")
	fs.StringVar(&cfg.Language, "lang", cfg.Language, "Reminder language (en|es)")
	fs.BoolVar(&cfg.Dedupe, "dedupe", cfg.Dedupe, "Skip reminders already delivered")
	fs.StringVar(&cfg.LedgerFile, "ledger", cfg.LedgerFile, "Reminder ledger database (relative to data dir)")
	fs.BoolVar(&cfg.History, "history", cfg.History, "Write a JSONL history file per scan")
	fs.StringVar(&cfg.TemplatesDir, "templates-dir", cfg.TemplatesDir, "Reminder template overrides (relative to data dir)")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Reminders sent in parallel")

	// Daemon and server
	fs.StringVar(&cfg.Schedule, "schedule", cfg.Schedule, "Cron schedule with seconds for the daemon")
	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "HTTP listen address")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in console logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in console logs")

	return fs.Parse(args)
}
