package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/oxc-project/oxlint-packager/internal/domain/target"
)

// Native is the package.json of a single platform package.
// Field order matches the order npm tooling and reviewers expect.
type Native struct {
	Name       string          `json:"name"`
	Version    string          `json:"version"`
	Author     json.RawMessage `json:"author,omitempty"`
	License    json.RawMessage `json:"license,omitempty"`
	Homepage   json.RawMessage `json:"homepage,omitempty"`
	Bugs       json.RawMessage `json:"bugs,omitempty"`
	Repository json.RawMessage `json:"repository,omitempty"`
	OS         []string        `json:"os"`
	CPU        []string        `json:"cpu"`
	Libc       []string        `json:"libc,omitempty"`
}

// NewNative derives the manifest of the binary's package for triple.
// An unmapped libc tag yields an error and no manifest.
func NewNative(tpl *Template, binary string, triple target.Triple) (*Native, error) {
	family, err := triple.LibcFamily()
	if err != nil {
		return nil, err
	}

	native := &Native{
		Name:       triple.PackageName(binary),
		Version:    tpl.Version,
		Author:     tpl.Author,
		License:    tpl.License,
		Homepage:   tpl.Homepage,
		Bugs:       tpl.Bugs,
		Repository: tpl.Repository,
		OS:         []string{triple.Platform()},
		CPU:        []string{triple.Arch()},
	}

	if family != "" {
		native.Libc = []string{family}
	}

	return native, nil
}

// Write stores the manifest at path.
func (n *Native) Write(path string) error {
	if err := WriteFile(path, n); err != nil {
		return fmt.Errorf("write manifest %s: %w", n.Name, err)
	}

	return nil
}
