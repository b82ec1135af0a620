package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskremind/internal/app"
	"github.com/nibzard/taskremind/internal/config"
	"github.com/nibzard/taskremind/internal/ledger"
	"github.com/nibzard/taskremind/internal/logging"
	"github.com/nibzard/taskremind/internal/notify"
	"github.com/nibzard/taskremind/internal/reminder"
	"github.com/nibzard/taskremind/internal/templates"
)

// session bundles the App with the resources a command must release.
type session struct {
	app    *app.App
	logger *log.Logger
	ledger *ledger.Ledger
}

// Close releases the ledger database.
func (s *session) Close() error {
	if s == nil || s.ledger == nil {
		return nil
	}
	return s.ledger.Close()
}

func newLogger(cfg *config.Config) *log.Logger {
	return logging.NewFromConfig(os.Stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
}

// buildNotifier creates the configured notifier after checking its settings.
func buildNotifier(cfg *config.Config, logger *log.Logger) (notify.Notifier, error) {
	if err := cfg.ValidateNotifier(); err != nil {
		return nil, err
	}
	switch cfg.Notifier {
	case config.NotifierSMTP:
		return notify.NewSMTPNotifier(notify.SMTPConfig{
			Server:        cfg.SMTP.Server,
			Port:          cfg.SMTP.Port,
			Username:      cfg.SMTP.Username,
			Password:      cfg.SMTP.Password,
			FromEmail:     cfg.SMTP.FromEmail,
			FromName:      cfg.SMTP.FromName,
			Subject:       cfg.SMTP.Subject,
			Security:      cfg.SMTP.Security,
			SkipTLSVerify: cfg.SMTP.SkipTLSVerify,
		})
	case config.NotifierSlack:
		return notify.NewSlackNotifier(cfg.Slack.Token)
	case config.NotifierLog, "":
		return notify.NewLogNotifier(logger), nil
	default:
		return nil, fmt.Errorf("unknown notifier: %s", cfg.Notifier)
	}
}

// openSession builds the App. When send is false the notifier is never
// constructed, so commands that only edit files work without SMTP or Slack
// settings.
func openSession(cfg *config.Config, send bool) (*session, error) {
	logger := newLogger(cfg)
	s := &session{logger: logger}

	lang, err := reminder.ParseLanguage(cfg.Language)
	if err != nil {
		return nil, err
	}
	reminderOpts := []reminder.Option{
		reminder.WithLanguage(lang),
		reminder.WithConcurrency(cfg.Concurrency),
		reminder.WithTemplates(templates.NewRenderer(templates.NewStore(cfg.TemplatesDir))),
	}

	var notifier notify.Notifier
	if send {
		n, err := buildNotifier(cfg, logger)
		if err != nil {
			return nil, err
		}
		notifier = n

		if cfg.Dedupe {
			l, err := ledger.Open(cfg.LedgerFile)
			if err != nil {
				return nil, fmt.Errorf("opening ledger: %w", err)
			}
			s.ledger = l
			reminderOpts = append(reminderOpts, reminder.WithLedger(l))
		}
		if cfg.History {
			reminderOpts = append(reminderOpts, reminder.WithHistory(cfg.HistoryDir))
		}
	}

	s.app = app.New(cfg.EmployeesFile, cfg.TasksDir, notifier,
		app.WithLogger(logger),
		app.WithReminderOptions(reminderOpts...),
	)
	return s, nil
}

// closeSession closes s and joins any error into err.
func closeSession(s *session, err *error) {
	if cerr := s.Close(); cerr != nil {
		*err = errors.Join(*err, fmt.Errorf("closing ledger: %w", cerr))
	}
}
