// Package config defines the repository layout the generator works on and
// provides helpers to load and validate it from an optional YAML file.
package config
