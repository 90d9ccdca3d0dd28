// Package version exposes build metadata of the generator binary itself.
//
// Version, Commit and BuildTime are injected through -ldflags. They describe
// the tool, not the release being packaged, which always comes from the
// template package.json.
package version
