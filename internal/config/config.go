package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oxc-project/oxlint-packager/internal/logger"
	"github.com/oxc-project/oxlint-packager/internal/manifest"
)

// Config describes where the generator reads its inputs and writes its packages.
type Config struct {
	// BinaryName is the executable shipped in every native package.
	BinaryName string `yaml:"binary_name"`
	// PackagesRoot is the directory holding the npm packages; native packages are created in it.
	PackagesRoot string `yaml:"packages_root"`
	// TemplateManifest is the package.json holding the shared release metadata.
	TemplateManifest string `yaml:"template_manifest"`
	// RootManifest is the package.json of the user-facing package whose optional dependencies are rewritten.
	RootManifest string `yaml:"root_manifest"`
	// BinariesDir holds the compiled binaries named <binary>-<triple>[.exe].
	BinariesDir string `yaml:"binaries_dir"`
	// DescriptionFile is an optional YAML file receiving per-package checksums.
	DescriptionFile string `yaml:"description_file"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is read when no explicit configuration path is given.
	DefaultConfigFilename = "oxlint-packager.yaml"

	// DefaultBinaryName is the binary packaged when the configuration does not name one.
	DefaultBinaryName = "oxlint"

	// DefaultPackagesRoot is the npm directory relative to the repository root.
	DefaultPackagesRoot = "npm"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errInvalidBinaryName is returned for binary names that would escape the packages root.
	errInvalidBinaryName = errors.New("binary name must be a plain file name")
)

// Default returns a configuration with every field set to its default.
func Default() *Config {
	cfg := new(Config)

	// Defaults never fail validation.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from path.
// An empty path reads DefaultConfigFilename when it exists and returns defaults otherwise.
func Load(path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultConfigFilename); errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings and fills in defaults derived from the layout.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.BinaryName == "" {
		settings.BinaryName = DefaultBinaryName
	}

	if strings.ContainsAny(settings.BinaryName, `/\`) || settings.BinaryName == "." || settings.BinaryName == ".." {
		return fmt.Errorf("%q: %w", settings.BinaryName, errInvalidBinaryName)
	}

	if settings.PackagesRoot == "" {
		settings.PackagesRoot = DefaultPackagesRoot
	}

	settings.PackagesRoot = filepath.Clean(settings.PackagesRoot)

	// The template and the user-facing manifest are the same file in the default layout.
	if settings.TemplateManifest == "" {
		settings.TemplateManifest = settings.PackageManifest()
	}

	if settings.RootManifest == "" {
		settings.RootManifest = settings.PackageManifest()
	}

	// Release binaries sit one level above the packages root.
	if settings.BinariesDir == "" {
		settings.BinariesDir = filepath.Dir(settings.PackagesRoot)
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("log level %q: %w", settings.LogLevel, logger.ErrUnknownLevel)
	}

	return nil
}

// PackageManifest returns the path of the user-facing package's manifest.
func (c *Config) PackageManifest() string {
	return filepath.Join(c.PackagesRoot, c.BinaryName, manifest.Filename)
}

// PackageDir returns the directory of the native package named dirName.
func (c *Config) PackageDir(dirName string) string {
	return filepath.Join(c.PackagesRoot, dirName)
}
