package target

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Separator joins the components of a triple.
	Separator = "-"

	// WindowsPlatform is the npm platform identifier that requires ExecutableExtension.
	WindowsPlatform = "win32"

	// ExecutableExtension is appended to binary names on WindowsPlatform only.
	ExecutableExtension = ".exe"

	minComponents = 2
	maxComponents = 3
)

var (
	// ErrMalformedTriple is returned when a triple does not have 2 or 3 non-empty components.
	ErrMalformedTriple = errors.New("malformed target triple")
	// ErrUnknownLibc is returned when a triple carries a libc tag missing from the libc mapping.
	ErrUnknownLibc = errors.New("unknown libc flavor")
)

// Triple is a platform-arch[-libc] identifier, e.g. "linux-x64-gnu" or "win32-arm64".
type Triple string

// Parse validates raw and returns it as a Triple.
func Parse(raw string) (Triple, error) {
	parts := strings.Split(raw, Separator)
	if len(parts) < minComponents || len(parts) > maxComponents {
		return "", fmt.Errorf("%q: %w", raw, ErrMalformedTriple)
	}

	for _, part := range parts {
		if part == "" {
			return "", fmt.Errorf("%q: %w", raw, ErrMalformedTriple)
		}
	}

	return Triple(raw), nil
}

// String implements fmt.Stringer.
func (t Triple) String() string {
	return string(t)
}

// Platform returns the OS component, e.g. "linux".
func (t Triple) Platform() string {
	return t.component(0)
}

// Arch returns the CPU component, e.g. "x64".
func (t Triple) Arch() string {
	return t.component(1)
}

// Libc returns the libc tag, or "" for platforms with a single C runtime.
func (t Triple) Libc() string {
	return t.component(2)
}

// LibcFamily resolves the libc tag through the libc mapping.
// It returns "" and no error when the triple has no libc component.
func (t Triple) LibcFamily() (string, error) {
	tag := t.Libc()
	if tag == "" {
		return "", nil
	}

	family, ok := LibcFamily(tag)
	if !ok {
		return "", fmt.Errorf("%s: libc %q: %w", t, tag, ErrUnknownLibc)
	}

	return family, nil
}

// ExecutableExtension returns ".exe" for Windows targets and "" elsewhere.
func (t Triple) ExecutableExtension() string {
	if t.Platform() == WindowsPlatform {
		return ExecutableExtension
	}

	return ""
}

// PackageName returns the scoped npm package name: "@<binary>/<triple>".
func (t Triple) PackageName(binary string) string {
	return "@" + binary + "/" + string(t)
}

// DirName returns the package directory name: "<binary>-<triple>".
func (t Triple) DirName(binary string) string {
	return binary + Separator + string(t)
}

// SourceBinaryName returns the name of the compiled binary produced by the release build.
func (t Triple) SourceBinaryName(binary string) string {
	return t.DirName(binary) + t.ExecutableExtension()
}

// StagedBinaryName returns the name the binary gets inside its package.
func (t Triple) StagedBinaryName(binary string) string {
	return binary + t.ExecutableExtension()
}

func (t Triple) component(index int) string {
	parts := strings.Split(string(t), Separator)
	if index >= len(parts) {
		return ""
	}

	return parts[index]
}
