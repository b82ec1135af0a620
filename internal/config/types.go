package config

// Default values.
const (
	DefaultNotifier    = NotifierLog
	DefaultLanguage    = "en"
	DefaultSchedule    = "0 0 8 * * *"
	DefaultListenAddr  = "127.0.0.1:8080"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultConcurrency = 1
)

// Notifier kinds.
const (
	NotifierSMTP  = "smtp"
	NotifierSlack = "slack"
	NotifierLog   = "log"
)

// Config holds the runtime configuration.
type Config struct {
	// Storage
	DataDir       string `toml:"data_dir" validate:"required"`
	EmployeesFile string `toml:"employees_file"`
	TasksDir      string `toml:"tasks_dir"`

	// Reminders
	Notifier   string `toml:"notifier" validate:"oneof=smtp slack log"`
	Language   string `toml:"language" validate:"oneof=en es"`
	Dedupe     bool   `toml:"dedupe"`
	LedgerFile string `toml:"ledger_file"`
	History    bool   `toml:"history"`
	HistoryDir string `toml:"history_dir"`

	// TemplatesDir holds reminder.<lang>.txt overrides.
	TemplatesDir string `toml:"templates_dir"`

	// Concurrency bounds parallel sends; 1 sends in scan order.
	Concurrency int `toml:"concurrency" validate:"gte=1,lte=64"`

	// Daemon and HTTP front end
	Schedule   string `toml:"schedule" validate:"required"`
	ListenAddr string `toml:"listen_addr" validate:"required,hostname_port"`

	// Logging
	LogLevel      string `toml:"log_level" validate:"oneof=debug info warn warning error fatal"`
	LogFormat     string `toml:"log_format" validate:"oneof=text json logfmt"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	SMTP  SMTPConfig  `toml:"smtp" validate:"-"`
	Slack SlackConfig `toml:"slack" validate:"-"`

	// Set by Load, not read from files.
	ConfigFiles []string `toml:"-"`
}

// SMTPConfig configures the e-mail notifier.
type SMTPConfig struct {
	Server        string `toml:"server" validate:"required"`
	Port          int    `toml:"port" validate:"gte=0,lte=65535"`
	Username      string `toml:"username"`
	Password      string `toml:"password"`
	FromEmail     string `toml:"from_email" validate:"required,email"`
	FromName      string `toml:"from_name"`
	Subject       string `toml:"subject"`
	Security      string `toml:"security" validate:"omitempty,oneof=starttls tls none"`
	SkipTLSVerify bool   `toml:"skip_tls_verify"`
}

// SlackConfig configures the Slack notifier.
type SlackConfig struct {
	Token string `toml:"token" validate:"required"`
}
