package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// Filename is the manifest name inside every npm package.
	Filename = "package.json"

	// FilePermissions is used for every manifest written by the generator.
	FilePermissions os.FileMode = 0o644

	indent = "  "
)

var (
	// ErrNotObject is returned when a document's top-level JSON value is not an object.
	ErrNotObject = errors.New("manifest is not a JSON object")
	// ErrKeyNotFound is returned by Document.Get for absent keys.
	ErrKeyNotFound = errors.New("key not found")
)

// Document is a JSON object that keeps its keys in insertion order.
// The zero value is an empty document ready to use.
type Document struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		values: make(map[string]json.RawMessage),
	}
}

// LoadDocument reads the JSON object stored at path.
func LoadDocument(path string) (*Document, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	doc := NewDocument()
	if err = json.Unmarshal(contents, doc); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}

	return doc, nil
}

// Keys returns the document keys in order.
func (d *Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Len returns the number of keys.
func (d *Document) Len() int {
	return len(d.keys)
}

// Raw returns the undecoded value stored under key.
func (d *Document) Raw(key string) (json.RawMessage, bool) {
	raw, ok := d.values[key]

	return raw, ok
}

// Get decodes the value stored under key into out.
func (d *Document) Get(key string, out any) error {
	raw, ok := d.values[key]
	if !ok {
		return fmt.Errorf("%q: %w", key, ErrKeyNotFound)
	}

	return json.Unmarshal(raw, out)
}

// Set replaces the value of an existing key in place or appends a new key.
func (d *Document) Set(key string, value any) error {
	raw, err := marshalCompact(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	if d.values == nil {
		d.values = make(map[string]json.RawMessage)
	}

	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}

	d.values[key] = raw

	return nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping the key order of data.
func (d *Document) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))

	token, err := decoder.Token()
	if err != nil {
		return err
	}

	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return ErrNotObject
	}

	d.keys = d.keys[:0]
	d.values = make(map[string]json.RawMessage)

	for decoder.More() {
		token, err = decoder.Token()
		if err != nil {
			return err
		}

		key, ok := token.(string)
		if !ok {
			return ErrNotObject
		}

		var raw json.RawMessage
		if err = decoder.Decode(&raw); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}

		if _, exists := d.values[key]; !exists {
			d.keys = append(d.keys, key)
		}

		d.values[key] = raw
	}

	// Closing brace.
	if _, err = decoder.Token(); err != nil {
		return err
	}

	return nil
}

// MarshalJSON implements json.Marshaler, emitting keys in document order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		encodedKey, err := marshalCompact(key)
		if err != nil {
			return nil, err
		}

		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(d.values[key])
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// WriteFile encodes v as indented JSON without HTML escaping and writes it to path.
func WriteFile(path string, v any) error {
	contents, err := encode(v, indent)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Clean(path), contents, FilePermissions)
}

func marshalCompact(v any) (json.RawMessage, error) {
	contents, err := encode(v, "")
	if err != nil {
		return nil, err
	}

	return bytes.TrimRight(contents, "\n"), nil
}

// encode keeps "<" and ">" literal so author strings like "Name <mail>" survive unchanged.
func encode(v any, indentation string) ([]byte, error) {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if indentation != "" {
		encoder.SetIndent("", indentation)
	}

	if err := encoder.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
