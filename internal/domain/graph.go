package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

type GraphNode struct {
	ID         string         `json:"id,omitempty"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`

	keyOrder []string
}

// PropertyKeys returns the node's property names in the order they appeared in the source
// document. Nodes built in code fall back to sorted order.
func (n GraphNode) PropertyKeys() []string {
	if len(n.keyOrder) == len(n.Properties) {
		out := make([]string, len(n.keyOrder))
		copy(out, n.keyOrder)
		return out
	}
	out := make([]string, 0, len(n.Properties))
	for k := range n.Properties {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (n *GraphNode) UnmarshalJSON(b []byte) error {
	var aux struct {
		ID         string          `json:"id"`
		Labels     []string        `json:"labels"`
		Properties json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	props, keys, err := decodeOrderedObject(aux.Properties)
	if err != nil {
		return fmt.Errorf("node properties: %w", err)
	}
	n.ID = aux.ID
	n.Labels = aux.Labels
	n.Properties = props
	n.keyOrder = keys
	return nil
}

type GraphRelationship struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

func (r *GraphRelationship) UnmarshalJSON(b []byte) error {
	var aux struct {
		Source     string          `json:"source"`
		Target     string          `json:"target"`
		Type       string          `json:"type"`
		Properties json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	props, _, err := decodeOrderedObject(aux.Properties)
	if err != nil {
		return fmt.Errorf("relationship properties: %w", err)
	}
	r.Source, r.Target, r.Type = aux.Source, aux.Target, aux.Type
	r.Properties = props
	return nil
}

// UploadedGraphData is the externally supplied dataset; it is read-only to the pipeline.
type UploadedGraphData struct {
	Nodes         []GraphNode         `json:"nodes"`
	Relationships []GraphRelationship `json:"relationships,omitempty"`
}

// decodeOrderedObject decodes a JSON object keeping numbers as json.Number and
// recording the order of its top-level keys.
func decodeOrderedObject(raw json.RawMessage) (map[string]any, []string, error) {
	out := map[string]any{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return out, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, nil, err
	}

	keys := make([]string, 0, len(out))
	seen := make(map[string]struct{}, len(out))
	tok := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := tok.Token(); err != nil {
		return nil, nil, err
	}
	for tok.More() {
		t, err := tok.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := t.(string)
		var skip json.RawMessage
		if err := tok.Decode(&skip); err != nil {
			return nil, nil, err
		}
		// Duplicate keys: the decoded map keeps the last value, order keeps the first position.
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return out, keys, nil
}

// Entity is a schema-conformant node ready for the graph persistence collaborator.
type Entity struct {
	Key        string         `json:"key"`
	NodeType   string         `json:"nodeType"`
	Properties map[string]any `json:"properties"`
}

type EntityRelationship struct {
	SourceKey  string         `json:"sourceKey"`
	TargetKey  string         `json:"targetKey"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

type EntityBatch struct {
	NodeType      string               `json:"nodeType"`
	Entities      []Entity             `json:"entities"`
	Relationships []EntityRelationship `json:"relationships,omitempty"`
}

type WarningCode string

const (
	WarningStringified          WarningCode = "stringified"
	WarningCoercionFailed       WarningCode = "coercion_failed"
	WarningUndeclaredProperty   WarningCode = "undeclared_property"
	WarningMissingRequired      WarningCode = "missing_required"
	WarningDanglingRelationship WarningCode = "dangling_relationship"
)

// FieldWarning describes a per-field problem that did not abort the upload.
type FieldWarning struct {
	Code           WarningCode  `json:"code"`
	NodeIndex      int          `json:"nodeIndex"`
	NodeKey        string       `json:"nodeKey,omitempty"`
	SourceProperty string       `json:"sourceProperty,omitempty"`
	TargetProperty string       `json:"targetProperty,omitempty"`
	Type           PropertyType `json:"type,omitempty"`
	Value          any          `json:"value,omitempty"`
	Message        string       `json:"message"`
}

type UploadReport struct {
	NodeType          string         `json:"nodeType"`
	NodeCount         int            `json:"nodeCount"`
	RelationshipCount int            `json:"relationshipCount"`
	Warnings          []FieldWarning `json:"warnings"`
}
