package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskremind configuration file
# Values can be overridden by environment variables or CLI flags

# Data directory (supports ~ expansion and %VAR% on Windows)
data_dir = "~/.taskremind"

# Files inside the data directory
employees_file = "employees.json"
tasks_dir = "tasks"

# Notifier: smtp, slack, or log (dry run)
notifier = "log"

# Reminder language: en or es
language = "en"

# Skip reminders that were already delivered (sqlite ledger)
dedupe = false
ledger_file = "ledger.db"

# Write a JSONL history file per scan
history = true
history_dir = "history"

# Reminder text overrides: reminder.en.txt and reminder.es.txt, rendered
# with Go templates ({{.Employee}}, {{.Description}}, {{.Priority}}, {{.DueDate}})
templates_dir = "templates"

# Reminders sent in parallel (1 keeps scan order)
concurrency = 1

# Daemon schedule (cron with seconds): every day at 08:00
schedule = "0 0 8 * * *"

# HTTP API listen address
listen_addr = "127.0.0.1:8080"

# Console logging
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false

[smtp]
server = "smtp.example.com"
port = 587
username = "reminders@example.com"
# password is better kept in SMTP_PASSWORD or a .env file
from_email = "reminders@example.com"
from_name = "Task reminders"
subject = "Task reminder"
security = "starttls"  # starttls, tls, or none
skip_tls_verify = false

[slack]
# token is better kept in SLACK_BOT_TOKEN or a .env file
# token = "xoxb-..."
`
}
