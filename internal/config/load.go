package config

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/nibzard/taskremind/internal/datadir"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file
// 3. Project config file
// 4. .env file
// 5. Environment variables
// 6. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	// 1. Set defaults
	setDefaults(cfg)

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	// 4. Secrets from .env
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	// 5. Override from environment
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	// 6. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 7. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfigFile loads TOML config from the given file.
func loadConfigFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return err
	}
	cfg.ConfigFiles = append(cfg.ConfigFiles, path)
	return nil
}

// finalizeConfig expands and resolves paths against the data directory.
func finalizeConfig(cfg *Config) error {
	cfg.Notifier = strings.ToLower(strings.TrimSpace(cfg.Notifier))
	cfg.Language = strings.ToLower(strings.TrimSpace(cfg.Language))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	dataDir := expandPath(cfg.DataDir)
	if dataDir == "" {
		dataDir = datadir.Default()
	}
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return fmt.Errorf("resolving data dir: %w", err)
	}
	cfg.DataDir = abs

	cfg.EmployeesFile = datadir.Resolve(abs, expandPath(cfg.EmployeesFile), datadir.DefaultEmployeesFile)
	cfg.TasksDir = datadir.Resolve(abs, expandPath(cfg.TasksDir), datadir.DefaultTasksDir)
	cfg.LedgerFile = datadir.Resolve(abs, expandPath(cfg.LedgerFile), datadir.DefaultLedgerFile)
	cfg.HistoryDir = datadir.Resolve(abs, expandPath(cfg.HistoryDir), datadir.DefaultHistoryDir)
	cfg.TemplatesDir = datadir.Resolve(abs, expandPath(cfg.TemplatesDir), datadir.DefaultTemplatesDir)
	return nil
}

var validate = validator.New()

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", describe(err))
	}
	return nil
}

// ValidateNotifier checks the settings of the selected notifier.
func (c *Config) ValidateNotifier() error {
	var err error
	switch c.Notifier {
	case NotifierSMTP:
		err = validate.Struct(c.SMTP)
	case NotifierSlack:
		err = validate.Struct(c.Slack)
	}
	if err != nil {
		return fmt.Errorf("invalid %s config: %w", c.Notifier, describe(err))
	}
	return nil
}

// describe turns validator field errors into one error per field.
func describe(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			errs = append(errs, fmt.Errorf("%s: must satisfy %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
			continue
		}
		errs = append(errs, fmt.Errorf("%s: %s", fe.Namespace(), fe.Tag()))
	}
	return errors.Join(errs...)
}
