// Package templates renders reminder messages from text templates. Files in
// the template directory override the bundled defaults.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
)

//go:embed defaults/*.txt
var defaults embed.FS

// ReminderPrefix is the file name prefix of reminder templates. The full
// name is reminder.<lang>.txt.
const ReminderPrefix = "reminder"

// ReminderName returns the template file name for lang.
func ReminderName(lang string) string {
	return ReminderPrefix + "." + lang + ".txt"
}

// Store loads template sources from dir, falling back to the bundled
// defaults.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. An empty dir uses only the
// bundled templates.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the override directory.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads a template source. It reports whether the source came from
// the override directory.
func (s *Store) Load(name string) (string, bool, error) {
	if name == "" {
		return "", false, errors.New("template name is empty")
	}
	if s.dir != "" {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err == nil {
			return string(data), true, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", false, fmt.Errorf("read template %q: %w", name, err)
		}
	}
	data, err := defaults.ReadFile("defaults/" + name)
	if err != nil {
		return "", false, fmt.Errorf("unknown template %q", name)
	}
	return string(data), false, nil
}

// Data holds reminder template variables.
type Data struct {
	Employee    string
	Address     string
	Description string
	Priority    string
	DueDate     string
}

// Renderer renders templates with strict missing-key behavior. Parsed
// templates are cached.
type Renderer struct {
	store *Store

	mu     sync.Mutex
	parsed map[string]*template.Template
}

// NewRenderer creates a renderer over store.
func NewRenderer(store *Store) *Renderer {
	return &Renderer{store: store, parsed: make(map[string]*template.Template)}
}

// Default renders only the bundled templates.
func Default() *Renderer {
	return NewRenderer(NewStore(""))
}

// Reminder renders the reminder template for lang.
func (r *Renderer) Reminder(lang string, data Data) (string, error) {
	return r.Render(ReminderName(lang), data)
}

// Render loads and renders a template after checking required variables.
// Surrounding whitespace is trimmed from the result.
func (r *Renderer) Render(name string, data Data) (string, error) {
	if r == nil || r.store == nil {
		return "", errors.New("template renderer is not initialized")
	}
	if err := validateRequired(name, data); err != nil {
		return "", err
	}
	tmpl, err := r.template(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %q: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (r *Renderer) template(name string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.parsed[name]; ok {
		return tmpl, nil
	}
	raw, _, err := r.store.Load(name)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", name, err)
	}
	r.parsed[name] = tmpl
	return tmpl, nil
}

// validateRequired checks reminder data. An empty description is allowed;
// the store accepts it and the plain message path sends it.
func validateRequired(name string, data Data) error {
	if !strings.HasPrefix(name, ReminderPrefix+".") {
		return nil
	}
	if data.DueDate == "" {
		return fmt.Errorf("template %q requires DueDate", name)
	}
	return nil
}
