// Package manifest reads and writes npm package.json files.
//
// Template carries the release metadata shared by every generated package,
// Native is the platform-scoped manifest derived from it, and Document is an
// order-preserving JSON object used to rewrite manifests without reshuffling
// fields the generator does not own.
package manifest
