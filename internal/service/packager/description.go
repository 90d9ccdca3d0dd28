package packager

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oxc-project/oxlint-packager/internal/logger"
	"github.com/oxc-project/oxlint-packager/internal/manifest"
)

// Description summarizes a generated release for the publishing step.
type Description struct {
	// Version is the release version every package was generated for.
	Version string `yaml:"version"`
	// Packages maps npm package names to their staged content.
	Packages map[string]PackageDescription `yaml:"packages"`
}

// PackageDescription describes one generated package.
type PackageDescription struct {
	// Directory is the package directory relative to the packages root.
	Directory string `yaml:"directory"`
	// Binary is the staged binary name inside Directory.
	Binary string `yaml:"binary"`
	// Checksum is the base64-encoded SHA-512 of the staged binary.
	Checksum string `yaml:"sha512"`
}

// LoadDescription reads a description written by the packager.
func LoadDescription(path string) (*Description, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read description: %w", err)
	}

	var desc Description
	if err = yaml.Unmarshal(contents, &desc); err != nil {
		return nil, fmt.Errorf("unmarshal description: %w", err)
	}

	return &desc, nil
}

func (p *packager) description() *Description {
	desc := &Description{
		Version:  p.template.Version,
		Packages: make(map[string]PackageDescription, len(p.staged)),
	}

	for _, staged := range p.staged {
		desc.Packages[staged.name] = PackageDescription{
			Directory: staged.directory,
			Binary:    staged.binary,
			Checksum:  base64.StdEncoding.EncodeToString(staged.checksum),
		}
	}

	return desc
}

// writeDescription stores the release description; yaml.v3 sorts map keys, so output is stable.
func (p *packager) writeDescription(ctx context.Context) error {
	contents, err := yaml.Marshal(p.description())
	if err != nil {
		return fmt.Errorf("marshal description: %w", err)
	}

	path := p.cfg.DescriptionFile
	logger.InfoKV(ctx, "Saving release description", "path", path)

	if err = os.WriteFile(filepath.Clean(path), contents, manifest.FilePermissions); err != nil {
		return fmt.Errorf("write description: %w", err)
	}

	return nil
}
