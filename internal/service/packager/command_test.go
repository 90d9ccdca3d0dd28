package packager

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxc-project/oxlint-packager/internal/config"
	"github.com/oxc-project/oxlint-packager/internal/domain/target"
	"github.com/oxc-project/oxlint-packager/internal/manifest"
)

const rootManifestJSON = `{
  "name": "oxlint",
  "version": "1.2.3",
  "description": "Linter for the JavaScript Oxidation Compiler",
  "author": "Boshen and oxc contributors",
  "license": "MIT",
  "homepage": "https://oxc.rs",
  "bugs": "https://github.com/oxc-project/oxc/issues",
  "repository": {
    "type": "git",
    "url": "https://github.com/oxc-project/oxc",
    "directory": "npm/oxlint"
  },
  "bin": "bin/oxlint",
  "optionalDependencies": {
    "@oxlint/linux-x64-uclibc": "0.9.0",
    "@oxlint/win32-x64": "0.9.0"
  },
  "files": ["bin/oxlint"]
}`

// setupRepo lays out <root>/npm/oxlint/package.json and one binary per target in <root>.
func setupRepo(t *testing.T, targets []target.Triple) *config.Config {
	t.Helper()

	root := t.TempDir()
	packagesRoot := filepath.Join(root, "npm")

	require.NoError(t, os.MkdirAll(filepath.Join(packagesRoot, "oxlint"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(packagesRoot, "oxlint", manifest.Filename),
		[]byte(rootManifestJSON), 0o644))

	for _, triple := range targets {
		binary := filepath.Join(root, triple.SourceBinaryName("oxlint"))
		require.NoError(t, os.WriteFile(binary, binaryContents(triple), 0o644))
	}

	cfg := &config.Config{PackagesRoot: packagesRoot}
	require.NoError(t, config.Validate(cfg))

	return cfg
}

func binaryContents(triple target.Triple) []byte {
	return []byte("\x7fELF oxlint build for " + triple.String())
}

func runPackager(t *testing.T, cfg *config.Config, targets []target.Triple) *packager {
	t.Helper()

	pkg, err := newPackager(cfg, targets)
	require.NoError(t, err)
	require.NoError(t, pkg.Run(context.Background()))

	return pkg
}

// TestRun_MaterializesEveryTarget checks manifests and staged binaries for the whole catalog.
func TestRun_MaterializesEveryTarget(t *testing.T) {
	t.Parallel()

	targets := target.Catalog()
	cfg := setupRepo(t, targets)
	runPackager(t, cfg, targets)

	for _, triple := range targets {
		packageDir := filepath.Join(cfg.PackagesRoot, triple.DirName("oxlint"))

		doc, err := manifest.LoadDocument(filepath.Join(packageDir, manifest.Filename))
		require.NoError(t, err)

		var (
			name, version string
			osField       []string
			cpuField      []string
		)

		require.NoError(t, doc.Get("name", &name))
		require.NoError(t, doc.Get("version", &version))
		require.NoError(t, doc.Get("os", &osField))
		require.NoError(t, doc.Get("cpu", &cpuField))
		require.Equal(t, triple.PackageName("oxlint"), name)
		require.Equal(t, "1.2.3", version)

		// Constraints decode back to the triple.
		decoded := osField[0] + target.Separator + cpuField[0]

		var libcField []string
		if err = doc.Get("libc", &libcField); err == nil {
			require.Len(t, libcField, 1)

			family, ferr := triple.LibcFamily()
			require.NoError(t, ferr)
			require.Equal(t, family, libcField[0])

			decoded += target.Separator + triple.Libc()
		} else {
			require.ErrorIs(t, err, manifest.ErrKeyNotFound)
		}

		require.Equal(t, triple.String(), decoded)

		// Shared fields are copied, the rest of the root manifest is not.
		_, ok := doc.Raw("repository")
		require.True(t, ok)
		_, ok = doc.Raw("bin")
		require.False(t, ok)

		staged := filepath.Join(packageDir, triple.StagedBinaryName("oxlint"))
		contents, err := os.ReadFile(staged)
		require.NoError(t, err)
		require.Equal(t, binaryContents(triple), contents)
		require.Equal(t, triple.Platform() == target.WindowsPlatform, strings.HasSuffix(staged, ".exe"))

		entries, err := os.ReadDir(packageDir)
		require.NoError(t, err)
		require.Len(t, entries, 2, "only package.json and the binary are staged")

		if runtime.GOOS != "windows" {
			info, err := os.Stat(staged)
			require.NoError(t, err)
			require.Equal(t, BinaryFileMode, info.Mode().Perm())
		}
	}
}

// TestRun_LinuxGnuExample matches the documented linux-x64-gnu package byte for byte.
func TestRun_LinuxGnuExample(t *testing.T) {
	t.Parallel()

	targets := []target.Triple{"linux-x64-gnu"}
	cfg := setupRepo(t, targets)
	runPackager(t, cfg, targets)

	contents, err := os.ReadFile(filepath.Join(cfg.PackagesRoot, "oxlint-linux-x64-gnu", manifest.Filename))
	require.NoError(t, err)
	require.JSONEq(t, `{
		"name": "@oxlint/linux-x64-gnu",
		"version": "1.2.3",
		"author": "Boshen and oxc contributors",
		"license": "MIT",
		"homepage": "https://oxc.rs",
		"bugs": "https://github.com/oxc-project/oxc/issues",
		"repository": {"type": "git", "url": "https://github.com/oxc-project/oxc", "directory": "npm/oxlint"},
		"os": ["linux"],
		"cpu": ["x64"],
		"libc": ["glibc"]
	}`, string(contents))

	_, err = os.Stat(filepath.Join(cfg.PackagesRoot, "oxlint-linux-x64-gnu", "oxlint"))
	require.NoError(t, err)
}

// TestRun_RewritesOptionalDependencies replaces stale entries and keeps unrelated fields in order.
func TestRun_RewritesOptionalDependencies(t *testing.T) {
	t.Parallel()

	targets := target.Catalog()
	cfg := setupRepo(t, targets)

	// The user-facing manifest lags behind the template.
	stale := strings.Replace(rootManifestJSON, `"version": "1.2.3"`, `"version": "0.9.0"`, 1)
	cfg.RootManifest = filepath.Join(t.TempDir(), manifest.Filename)
	require.NoError(t, os.WriteFile(cfg.RootManifest, []byte(stale), 0o644))

	runPackager(t, cfg, targets)

	doc, err := manifest.LoadDocument(cfg.RootManifest)
	require.NoError(t, err)
	require.Equal(t, []string{
		"name", "version", "description", "author", "license", "homepage", "bugs",
		"repository", "bin", "optionalDependencies", "files",
	}, doc.Keys())

	var version string
	require.NoError(t, doc.Get("version", &version))
	require.Equal(t, "1.2.3", version)

	raw, ok := doc.Raw("optionalDependencies")
	require.True(t, ok)

	dependencies := manifest.NewDocument()
	require.NoError(t, dependencies.UnmarshalJSON(raw))

	want := make([]string, 0, len(targets))
	for _, triple := range targets {
		want = append(want, triple.PackageName("oxlint"))

		var pinned string
		require.NoError(t, dependencies.Get(triple.PackageName("oxlint"), &pinned))
		require.Equal(t, "1.2.3", pinned)
	}

	require.Equal(t, want, dependencies.Keys())
}

// TestRun_Idempotent runs twice and expects byte-identical output.
func TestRun_Idempotent(t *testing.T) {
	t.Parallel()

	targets := target.Catalog()
	cfg := setupRepo(t, targets)
	cfg.DescriptionFile = filepath.Join(t.TempDir(), "release.yaml")

	snapshot := func() map[string][]byte {
		files := map[string][]byte{}

		paths := []string{cfg.RootManifest, cfg.DescriptionFile}
		for _, triple := range targets {
			packageDir := filepath.Join(cfg.PackagesRoot, triple.DirName("oxlint"))
			paths = append(paths,
				filepath.Join(packageDir, manifest.Filename),
				filepath.Join(packageDir, triple.StagedBinaryName("oxlint")))
		}

		for _, path := range paths {
			contents, err := os.ReadFile(path)
			require.NoError(t, err)

			files[path] = contents
		}

		return files
	}

	runPackager(t, cfg, targets)
	first := snapshot()

	// Leftovers from a previous configuration must not survive.
	leftover := filepath.Join(cfg.PackagesRoot, "oxlint-linux-x64-gnu", "stale.node")
	require.NoError(t, os.WriteFile(leftover, []byte("stale"), 0o644))

	runPackager(t, cfg, targets)
	require.Equal(t, first, snapshot())

	_, err := os.Stat(leftover)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestRun_MissingBinary aborts the run and leaves the user-facing manifest untouched.
func TestRun_MissingBinary(t *testing.T) {
	t.Parallel()

	targets := target.Catalog()
	cfg := setupRepo(t, targets)
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(cfg.PackagesRoot), "oxlint-darwin-x64")))

	pkg, err := newPackager(cfg, targets)
	require.NoError(t, err)

	err = pkg.Run(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Contains(t, err.Error(), "darwin-x64")

	contents, err := os.ReadFile(cfg.RootManifest)
	require.NoError(t, err)
	require.Equal(t, rootManifestJSON, string(contents))
}

// TestNewPackager_UnknownLibc rejects the catalog before anything is generated.
func TestNewPackager_UnknownLibc(t *testing.T) {
	t.Parallel()

	targets := []target.Triple{"linux-x64-gnu", "linux-x64-bionic"}
	cfg := setupRepo(t, targets)

	_, err := newPackager(cfg, targets)
	require.ErrorIs(t, err, target.ErrUnknownLibc)

	for _, triple := range targets {
		_, err = os.Stat(filepath.Join(cfg.PackagesRoot, triple.DirName("oxlint")))
		require.ErrorIs(t, err, os.ErrNotExist)
	}
}

// TestMaterialize_UnknownLibc writes no manifest even when catalog validation is bypassed.
func TestMaterialize_UnknownLibc(t *testing.T) {
	t.Parallel()

	triple := target.Triple("linux-arm64-bionic")
	cfg := setupRepo(t, []target.Triple{triple})

	tpl, err := manifest.LoadTemplate(cfg.TemplateManifest)
	require.NoError(t, err)

	pkg := &packager{cfg: cfg, targets: []target.Triple{triple}, template: tpl}

	_, err = pkg.materialize(context.Background(), triple)
	require.ErrorIs(t, err, target.ErrUnknownLibc)

	_, err = os.Stat(filepath.Join(cfg.PackagesRoot, triple.DirName("oxlint"), manifest.Filename))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestNewPackager_BrokenTemplate fails fast on an unreadable template.
func TestNewPackager_BrokenTemplate(t *testing.T) {
	t.Parallel()

	cfg := setupRepo(t, nil)
	require.NoError(t, os.WriteFile(cfg.TemplateManifest, []byte("{not json"), 0o644))

	_, err := newPackager(cfg, target.Catalog())
	require.Error(t, err)
}

// TestRun_WritesDescription records one checksum per generated package.
func TestRun_WritesDescription(t *testing.T) {
	t.Parallel()

	targets := target.Catalog()
	cfg := setupRepo(t, targets)
	cfg.DescriptionFile = filepath.Join(t.TempDir(), "release.yaml")

	runPackager(t, cfg, targets)

	desc, err := LoadDescription(cfg.DescriptionFile)
	require.NoError(t, err)
	require.Equal(t, "1.2.3", desc.Version)
	require.Len(t, desc.Packages, len(targets))

	win := desc.Packages["@oxlint/win32-arm64"]
	require.Equal(t, "oxlint-win32-arm64", win.Directory)
	require.Equal(t, "oxlint.exe", win.Binary)

	sum := sha512.Sum512(binaryContents("win32-arm64"))
	require.Equal(t, base64.StdEncoding.EncodeToString(sum[:]), win.Checksum)
}

// TestStageBinary overwrites an existing destination and sets executable bits.
func TestStageBinary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "oxlint-linux-x64-musl")
	destination := filepath.Join(dir, "oxlint")

	require.NoError(t, os.WriteFile(source, []byte("new build"), 0o600))
	require.NoError(t, os.WriteFile(destination, []byte("old build"), 0o600))

	checksum, err := stageBinary(source, destination)
	require.NoError(t, err)

	sum := sha512.Sum512([]byte("new build"))
	require.Equal(t, sum[:], checksum)

	contents, err := os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, "new build", string(contents))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(destination)
		require.NoError(t, err)
		require.Equal(t, BinaryFileMode, info.Mode().Perm())
	}

	_, err = stageBinary(filepath.Join(dir, "missing"), destination)
	require.ErrorIs(t, err, os.ErrNotExist)
}
