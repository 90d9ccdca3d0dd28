package target

import "fmt"

// catalog lists every target the project ships binaries for.
// Keep in sync with the dispatch table in npm/oxlint/bin/oxlint.
//
//nolint:gochecknoglobals // Read-only table, exposed through Catalog only.
var catalog = [...]Triple{
	"win32-x64",
	"win32-arm64",
	"linux-x64-gnu",
	"linux-arm64-gnu",
	"linux-x64-musl",
	"linux-arm64-musl",
	"darwin-x64",
	"darwin-arm64",
}

// libcMapping translates libc tags to the names npm expects in the "libc" field.
//
//nolint:gochecknoglobals // Read-only table, exposed through LibcFamily only.
var libcMapping = map[string]string{
	"gnu":  "glibc",
	"musl": "musl",
}

// Catalog returns a copy of the target catalog in release order.
func Catalog() []Triple {
	triples := make([]Triple, len(catalog))
	copy(triples, catalog[:])

	return triples
}

// LibcFamily returns the npm libc family for tag.
func LibcFamily(tag string) (string, bool) {
	family, ok := libcMapping[tag]

	return family, ok
}

// ValidateCatalog checks that every triple is well formed and that its libc tag is mapped.
func ValidateCatalog(triples []Triple) error {
	for _, triple := range triples {
		if _, err := Parse(string(triple)); err != nil {
			return fmt.Errorf("validate catalog: %w", err)
		}

		if _, err := triple.LibcFamily(); err != nil {
			return fmt.Errorf("validate catalog: %w", err)
		}
	}

	return nil
}
