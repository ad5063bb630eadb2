// Package config loads the deployment environment file and resolves it into
// typed application settings.
package config

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
)

// Set is a ConfigurationSet: raw values keyed by variable name. Commented-out
// keys are not part of the set. A Set is never modified after it is built.
type Set struct {
	values map[string]string
}

// NewSet builds a Set from a plain map. The map is copied.
func NewSet(values map[string]string) *Set {
	return &Set{values: maps.Clone(values)}
}

// Lookup returns the value of key and whether it was declared.
func (s *Set) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Get returns the value of key, or "" when it was not declared.
func (s *Set) Get(key string) string {
	return s.values[key]
}

// Len returns the number of declared keys.
func (s *Set) Len() int { return len(s.values) }

// Keys returns the declared keys in sorted order.
func (s *Set) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Map returns a copy of the underlying values.
func (s *Set) Map() map[string]string {
	return maps.Clone(s.values)
}

// Equal reports whether both sets declare the same keys with the same values.
func (s *Set) Equal(other *Set) bool {
	if s == nil || other == nil {
		return s == other
	}
	return maps.Equal(s.values, other.values)
}

// Load reads a resolved environment file.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open env file: %w", err)
	}
	defer f.Close()

	return Parse(f, path)
}

// Parse reads KEY=VALUE declarations from r. Blank lines and lines starting
// with '#' are skipped; the first '=' splits key from value and both sides
// are trimmed. Values are taken literally. A repeated key overwrites the
// earlier declaration. name is only used in error messages.
func Parse(r io.Reader, name string) (*Set, error) {
	values := make(map[string]string)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for sc.Scan() {
		lineno++
		raw := sc.Text()
		if lineno == 1 {
			raw = strings.TrimPrefix(raw, "\ufeff")
		}

		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &MalformedLineError{Path: name, Line: lineno, Text: line}
		}
		values[key] = strings.TrimSpace(value)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return &Set{values: values}, nil
}

// FromEnviron builds a Set from entries in os.Environ() form. Entries without
// '=' are ignored.
func FromEnviron(environ []string) *Set {
	values := make(map[string]string, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		values[key] = value
	}
	return &Set{values: values}
}
