// Package packager generates the per-platform npm packages of a release.
//
// For every target in the catalog it recreates the package directory, writes a
// platform-scoped package.json and stages the compiled binary with executable
// permissions. It then rewrites the user-facing package.json so that its
// optionalDependencies reference exactly the generated packages at the
// release version.
package packager
