package reminder

import (
	"fmt"
	"strings"

	"github.com/nibzard/taskremind/internal/todo"
)

// Language selects the reminder message template.
type Language string

const (
	English Language = "en"
	Spanish Language = "es"
)

// ParseLanguage accepts a language code or name.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "en", "english":
		return English, nil
	case "es", "spanish", "español", "espanol":
		return Spanish, nil
	}
	return "", fmt.Errorf("unknown language %q (want en or es)", s)
}

// FormatMessage renders the reminder text for task.
func FormatMessage(lang Language, task todo.Task) string {
	if lang == Spanish {
		return fmt.Sprintf("Hola, recuerda que la tarea '%s' vence el %s.", task.Description, task.DueDate)
	}
	return fmt.Sprintf("Reminder: task '%s' is due on %s.", task.Description, task.DueDate)
}
