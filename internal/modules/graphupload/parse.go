// Package graphupload turns an uploaded graph document plus a confirmed property mapping
// into schema-conformant entities.
package graphupload

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/yungbote/graphadmin-backend/internal/domain"
)

// ParseGraphFile decodes a JSON graph document. Property key order is preserved per node and
// numbers are kept as json.Number.
func ParseGraphFile(r io.Reader) (*domain.UploadedGraphData, error) {
	const op = "ParseGraphFile"
	if r == nil {
		return nil, domain.ValidationError(op, "graph file is required")
	}
	var doc struct {
		Nodes         *[]domain.GraphNode        `json:"nodes"`
		Relationships []domain.GraphRelationship `json:"relationships"`
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.ValidationError(op, "graph file is empty")
		}
		return nil, domain.ValidationError(op, "invalid graph file: %v", err)
	}
	if dec.More() {
		return nil, domain.ValidationError(op, "invalid graph file: trailing data after document")
	}
	if doc.Nodes == nil {
		return nil, domain.ValidationError(op, "graph file has no \"nodes\" array")
	}
	return &domain.UploadedGraphData{
		Nodes:         *doc.Nodes,
		Relationships: doc.Relationships,
	}, nil
}

// SampleProperties returns the property keys of the first node, which drive mapping suggestions.
func SampleProperties(data *domain.UploadedGraphData) []string {
	if data == nil || len(data.Nodes) == 0 {
		return []string{}
	}
	return data.Nodes[0].PropertyKeys()
}
