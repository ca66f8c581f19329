package domain

import "strings"

// PropertyMapping pairs an incoming field with a schema property. An empty TargetProperty
// means the source value is dropped.
type PropertyMapping struct {
	SourceProperty string `json:"sourceProperty"`
	TargetProperty string `json:"targetProperty"`
	NodeType       string `json:"nodeType"`
}

func (m PropertyMapping) Dropped() bool {
	return strings.TrimSpace(m.TargetProperty) == ""
}
