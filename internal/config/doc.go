// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.taskremind/taskremind.toml or OS-specific config directory)
// 3. Project config file (taskremind.toml or .taskremind.toml in the working directory)
// 4. A .env file in the working directory (values never override the real environment)
// 5. Environment variables (TASKREMIND_*, plus SMTP_PASSWORD and SLACK_BOT_TOKEN)
// 6. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
// The result is validated before it is returned.
//
// User-level config locations:
// - ~/.taskremind/taskremind.toml (preferred)
// - Windows: %APPDATA%\taskremind\taskremind.toml
// - macOS: ~/Library/Application Support/taskremind/taskremind.toml
// - Linux/BSD: $XDG_CONFIG_HOME/taskremind/taskremind.toml or ~/.config/taskremind/taskremind.toml
package config
