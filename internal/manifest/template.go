package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
)

var (
	// ErrMissingField is returned when the template lacks a required field.
	ErrMissingField = errors.New("required field is missing")
	// ErrInvalidVersion is returned when the template version is not a semantic version.
	ErrInvalidVersion = errors.New("invalid semantic version")
)

// Template is the release metadata read from the root package.json.
// Fields other than Name and Version are copied verbatim into native manifests.
type Template struct {
	Name       string          `json:"name"`
	Version    string          `json:"version"`
	Author     json.RawMessage `json:"author"`
	License    json.RawMessage `json:"license"`
	Homepage   json.RawMessage `json:"homepage"`
	Bugs       json.RawMessage `json:"bugs"`
	Repository json.RawMessage `json:"repository"`
}

// LoadTemplate reads and validates the template manifest at path.
func LoadTemplate(path string) (*Template, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read template manifest: %w", err)
	}

	var tpl Template
	if err = json.Unmarshal(contents, &tpl); err != nil {
		return nil, fmt.Errorf("decode template manifest %s: %w", path, err)
	}

	if err = tpl.Validate(); err != nil {
		return nil, fmt.Errorf("template manifest %s: %w", path, err)
	}

	return &tpl, nil
}

// Validate checks that all shared fields are present and that Version is strict semver.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("name: %w", ErrMissingField)
	}

	if t.Version == "" {
		return fmt.Errorf("version: %w", ErrMissingField)
	}

	if _, err := semver.StrictNewVersion(t.Version); err != nil {
		return fmt.Errorf("version %q: %w: %w", t.Version, ErrInvalidVersion, err)
	}

	required := []struct {
		name  string
		value json.RawMessage
	}{
		{"author", t.Author},
		{"license", t.License},
		{"homepage", t.Homepage},
		{"bugs", t.Bugs},
		{"repository", t.Repository},
	}

	for _, field := range required {
		if isAbsent(field.value) {
			return fmt.Errorf("%s: %w", field.name, ErrMissingField)
		}
	}

	return nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
