package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// errMultipleDocuments rejects files where a second document would
// otherwise be ignored silently.
var errMultipleDocuments = errors.New("policy must be a single document")

// Parse decodes a policy file. A file whose first non-blank byte is '{' is
// read as JSON, the original format, with full JSON escape syntax; anything
// else is read as YAML. Unknown keys, wrong types and extra documents are
// errors; missing keys take their zero values.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	decode := decodeYAML
	if isJSON(data) {
		decode = decodeJSON
	}
	if err := decode(bytes.NewReader(data), &cfg); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	return &cfg, nil
}

func isJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	switch err := dec.Decode(cfg); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return fmt.Errorf("decode YAML: %w", err)
	}

	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return fmt.Errorf("decode YAML: %w", err)
	default:
		return errMultipleDocuments
	}
}

// decodeJSON keeps the nil versus empty distinction for force_arguments:
// null or a missing key leaves the slice nil, [] makes it empty.
func decodeJSON(r io.Reader, cfg *Config) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}

	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return fmt.Errorf("decode JSON: %w", err)
	default:
		return errMultipleDocuments
	}
}
