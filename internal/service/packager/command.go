package packager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oxc-project/oxlint-packager/internal/config"
	"github.com/oxc-project/oxlint-packager/internal/domain/target"
	"github.com/oxc-project/oxlint-packager/internal/logger"
	"github.com/oxc-project/oxlint-packager/internal/manifest"
)

// DirFileMode is used for every package directory created by the generator.
const DirFileMode os.FileMode = 0o755

// Options contains inputs for the packager entry point.
// Empty fields keep the values from the configuration file.
type Options struct {
	// ConfigPath is an optional path to the layout configuration (defaults to oxlint-packager.yaml).
	ConfigPath string
	// PackagesRoot overrides the directory holding the npm packages.
	PackagesRoot string
	// DescriptionFile overrides the path of the release description.
	DescriptionFile string
	// LogLevel overrides the configured log level.
	LogLevel string
}

// packager generates the native packages of one release.
// It is unexported: callers use Run.
type packager struct {
	// cfg holds the repository layout.
	cfg *config.Config
	// targets is the catalog the packages are generated for.
	targets []target.Triple
	// template is the release metadata shared by every package.
	template *manifest.Template
	// staged records the result of each materialized target, in catalog order.
	staged []stagedPackage
}

// Run executes the packaging workflow.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "oxlint-packager")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.PackagesRoot != "" {
		// Re-derive the paths that follow the packages root.
		cfg = &config.Config{
			BinaryName:      cfg.BinaryName,
			PackagesRoot:    opts.PackagesRoot,
			DescriptionFile: cfg.DescriptionFile,
			LogLevel:        cfg.LogLevel,
		}

		if err = config.Validate(cfg); err != nil {
			return err
		}
	}

	if opts.DescriptionFile != "" {
		cfg.DescriptionFile = opts.DescriptionFile
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if err = logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}

	pkg, err := newPackager(cfg, target.Catalog())
	if err != nil {
		return fmt.Errorf("initialize packager: %w", err)
	}

	if err = pkg.Run(ctx); err != nil {
		return fmt.Errorf("packager failed: %w", err)
	}

	logger.InfoKV(ctx, "Packages generated", "version", pkg.template.Version, "count", len(pkg.staged))

	return nil
}

// newPackager validates the catalog and loads the template manifest.
// Nothing on disk is modified when it fails.
func newPackager(cfg *config.Config, targets []target.Triple) (*packager, error) {
	if err := target.ValidateCatalog(targets); err != nil {
		return nil, err
	}

	tpl, err := manifest.LoadTemplate(cfg.TemplateManifest)
	if err != nil {
		return nil, err
	}

	return &packager{
		cfg:      cfg,
		targets:  targets,
		template: tpl,
		staged:   make([]stagedPackage, 0, len(targets)),
	}, nil
}

// Run materializes every target, then rewrites the user-facing manifest.
func (p *packager) Run(ctx context.Context) error {
	logger.InfoKV(ctx, "Generating native packages",
		"version", p.template.Version,
		"targets", len(p.targets),
		"packages_root", p.cfg.PackagesRoot)

	for _, triple := range p.targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		staged, err := p.materialize(logger.WithKV(ctx, "target", triple.String()), triple)
		if err != nil {
			return fmt.Errorf("target %s: %w", triple, err)
		}

		p.staged = append(p.staged, staged)
	}

	if err := p.updateRootManifest(ctx); err != nil {
		return err
	}

	if p.cfg.DescriptionFile == "" {
		return nil
	}

	return p.writeDescription(ctx)
}

// materialize builds the package of a single target from scratch.
func (p *packager) materialize(ctx context.Context, triple target.Triple) (stagedPackage, error) {
	binary := p.cfg.BinaryName

	// Derived before the directory is touched so an unmapped libc never leaves a manifest behind.
	native, err := manifest.NewNative(p.template, binary, triple)
	if err != nil {
		return stagedPackage{}, err
	}

	packageDir := p.cfg.PackageDir(triple.DirName(binary))

	if err = os.RemoveAll(packageDir); err != nil {
		return stagedPackage{}, fmt.Errorf("remove %s: %w", packageDir, err)
	}

	logger.InfoKV(ctx, "Create directory", "path", packageDir)

	if err = os.Mkdir(packageDir, DirFileMode); err != nil {
		return stagedPackage{}, fmt.Errorf("create %s: %w", packageDir, err)
	}

	manifestPath := filepath.Join(packageDir, manifest.Filename)
	logger.InfoKV(ctx, "Create manifest", "path", manifestPath)

	if err = native.Write(manifestPath); err != nil {
		return stagedPackage{}, err
	}

	source := filepath.Join(p.cfg.BinariesDir, triple.SourceBinaryName(binary))
	destination := filepath.Join(packageDir, triple.StagedBinaryName(binary))

	logger.InfoKV(ctx, "Copy binary", "source", source, "path", destination)

	checksum, err := stageBinary(source, destination)
	if err != nil {
		return stagedPackage{}, err
	}

	return stagedPackage{
		name:      native.Name,
		directory: triple.DirName(binary),
		binary:    triple.StagedBinaryName(binary),
		checksum:  checksum,
	}, nil
}

// updateRootManifest pins the user-facing package to the release and its native packages.
// optionalDependencies is rebuilt from the catalog, never merged with the previous value.
func (p *packager) updateRootManifest(ctx context.Context) error {
	path := p.cfg.RootManifest

	doc, err := manifest.LoadDocument(path)
	if err != nil {
		return err
	}

	dependencies := manifest.NewDocument()
	for _, triple := range p.targets {
		if err = dependencies.Set(triple.PackageName(p.cfg.BinaryName), p.template.Version); err != nil {
			return err
		}
	}

	if err = doc.Set("version", p.template.Version); err != nil {
		return err
	}

	if err = doc.Set("optionalDependencies", dependencies); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Update manifest", "path", path, "optional_dependencies", dependencies.Len())

	if err = manifest.WriteFile(path, doc); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}

	return nil
}
