// config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Source tells where the settings of a process came from.
type Source struct {
	Path string // empty when read from the process environment
}

func (s Source) String() string {
	if s.Path == "" {
		return "environment"
	}
	return s.Path
}

// FromFile reports whether the settings came from an env file, which is the
// only source that can be reloaded.
func (s Source) FromFile() bool { return s.Path != "" }

// LoadSettings resolves the settings for the server. The env file at path is
// used when it exists; when it does not and required is false, the process
// environment is used instead.
func LoadSettings(path string, required bool) (*Settings, Source, error) {
	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			s, err := LoadFile(path)
			return s, Source{Path: path}, err
		case !errors.Is(err, fs.ErrNotExist) || required:
			return nil, Source{Path: path}, fmt.Errorf("env file: %w", err)
		}
	}

	s, err := Resolve(FromEnviron(os.Environ()))
	if err != nil {
		return nil, Source{}, fmt.Errorf("resolve environment: %w", err)
	}
	return s, Source{}, nil
}
