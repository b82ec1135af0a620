package reminder

import (
	"testing"

	"github.com/nibzard/taskremind/internal/todo"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		input   string
		want    Language
		wantErr bool
	}{
		{"", English, false},
		{"en", English, false},
		{"English", English, false},
		{"es", Spanish, false},
		{"ES", Spanish, false},
		{"español", Spanish, false},
		{"fr", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLanguage(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLanguage(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLanguage(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatMessage(t *testing.T) {
	task := todo.Task{Description: "Send report", DueDate: "20-10-26"}
	if got := FormatMessage(English, task); got != "Reminder: task 'Send report' is due on 20-10-26." {
		t.Errorf("English = %q", got)
	}
	if got := FormatMessage(Spanish, task); got != "Hola, recuerda que la tarea 'Send report' vence el 20-10-26." {
		t.Errorf("Spanish = %q", got)
	}
}
