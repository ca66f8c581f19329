// Package domain holds the graph schema, mapping, upload and metadata model shared by
// the services, collaborators and transport layers.
package domain

// NodeTypeAll is the node type recorded on change log entries that cover the whole schema.
const NodeTypeAll = "all"

// DefaultChangeLogCapacity is the number of change log entries retained by a store.
const DefaultChangeLogCapacity = 100
