// Package seed carries the built-in graph schema and sample universe records used when no
// persistent store has been written yet.
package seed

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/graphadmin-backend/internal/domain"
)

//go:embed schema.yaml
var schemaYAML []byte

//go:embed universes.json
var universesJSON []byte

// Schema returns the built-in universe / scene / relation schema.
func Schema() (domain.GraphSchema, error) {
	return ParseSchemaYAML(schemaYAML)
}

// LoadSchema reads a YAML schema from path, or the built-in schema when path is empty.
func LoadSchema(path string) (domain.GraphSchema, error) {
	if path == "" {
		return Schema()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.GraphSchema{}, fmt.Errorf("read schema seed %q: %w", path, err)
	}
	return ParseSchemaYAML(raw)
}

// ParseSchemaYAML decodes and validates a YAML schema document. Unknown keys are rejected.
func ParseSchemaYAML(raw []byte) (domain.GraphSchema, error) {
	var schema domain.GraphSchema
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&schema); err != nil {
		return domain.GraphSchema{}, domain.ValidationError("seed.ParseSchemaYAML", "invalid schema document: %v", err)
	}
	if schema.NodeSchemas == nil {
		schema.NodeSchemas = []domain.NodeSchema{}
	}
	if err := schema.Validate(); err != nil {
		return domain.GraphSchema{}, err
	}
	return schema, nil
}

// MarshalSchemaYAML renders schema in the same layout ParseSchemaYAML accepts.
func MarshalSchemaYAML(schema domain.GraphSchema) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(schema); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Universes returns the sample universe nodes in display order.
func Universes() ([]domain.GraphMetadata, error) {
	var out []domain.GraphMetadata
	if err := json.Unmarshal(universesJSON, &out); err != nil {
		return nil, fmt.Errorf("decode universe seed: %w", err)
	}
	return out, nil
}
