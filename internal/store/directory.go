package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Employee is one directory entry.
type Employee struct {
	ID      string `json:"id"`
	Address string `json:"address" validate:"required,email"`
}

// Directory maps employee identifiers to contact addresses.
type Directory struct {
	path     string
	entries  map[string]string
	validate *validator.Validate
}

// OpenDirectory loads the directory file at path, creating an empty one if
// it does not exist.
func OpenDirectory(path string) (*Directory, error) {
	data, err := readOrCreate(path, []byte("{}\n"))
	if err != nil {
		return nil, fmt.Errorf("open employee directory: %w", err)
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse employee directory %s: %w", path, err)
	}
	if entries == nil {
		entries = make(map[string]string)
	}

	return &Directory{
		path:     path,
		entries:  entries,
		validate: validator.New(),
	}, nil
}

// Path returns the backing file path.
func (d *Directory) Path() string {
	return d.path
}

// Add stores id -> address. The identifier is normalized and an existing
// entry is replaced.
func (d *Directory) Add(id, address string) (Employee, error) {
	norm, err := ValidateIdentifier(id)
	if err != nil {
		return Employee{}, err
	}
	emp := Employee{ID: norm, Address: strings.TrimSpace(address)}
	if err := d.validate.Struct(emp); err != nil {
		return Employee{}, fmt.Errorf("employee %s: invalid address %q: %w", norm, emp.Address, err)
	}
	d.entries[norm] = emp.Address
	return emp, nil
}

// Lookup returns the address of id.
func (d *Directory) Lookup(id string) (string, bool) {
	norm, err := ValidateIdentifier(id)
	if err != nil {
		return "", false
	}
	addr, ok := d.entries[norm]
	return addr, ok
}

// Remove deletes id. It reports whether the entry existed.
func (d *Directory) Remove(id string) bool {
	norm, err := ValidateIdentifier(id)
	if err != nil {
		return false
	}
	if _, ok := d.entries[norm]; !ok {
		return false
	}
	delete(d.entries, norm)
	return true
}

// Len returns the number of employees.
func (d *Directory) Len() int {
	return len(d.entries)
}

// List returns all employees sorted by identifier.
func (d *Directory) List() []Employee {
	out := make([]Employee, 0, len(d.entries))
	for id, addr := range d.entries {
		out = append(out, Employee{ID: id, Address: addr})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// Save writes the directory back to disk.
func (d *Directory) Save() error {
	data, err := marshalFile(d.entries)
	if err != nil {
		return fmt.Errorf("marshal employee directory: %w", err)
	}
	if err := writeFileAtomic(d.path, data, 0o644); err != nil {
		return fmt.Errorf("write employee directory: %w", err)
	}
	return nil
}
