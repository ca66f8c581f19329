package graph

import (
	"encoding/json"
	"strings"
	"time"
)

// quoteIdent renders a label or relationship type as a backtick-quoted Cypher identifier.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// propertyValue converts a coerced entity value into something Neo4j can store on a node.
// Neo4j properties cannot hold maps or lists of maps, so those are stored as JSON strings.
func propertyValue(v any) any {
	switch x := v.(type) {
	case nil, string, bool, int64, float64:
		return x
	case int:
		return int64(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case []any:
		out := make([]any, 0, len(x))
		for _, item := range x {
			switch item.(type) {
			case map[string]any, []any:
				return encodeJSON(x)
			}
			out = append(out, propertyValue(item))
		}
		if !homogeneous(out) {
			return encodeJSON(x)
		}
		return out
	case map[string]any:
		return encodeJSON(x)
	default:
		return encodeJSON(x)
	}
}

func propertyMap(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		if v == nil {
			continue
		}
		out[k] = propertyValue(v)
	}
	return out
}

// homogeneous reports whether every element shares one Go type; Neo4j lists must.
func homogeneous(items []any) bool {
	var kind string
	for i, item := range items {
		var k string
		switch item.(type) {
		case string:
			k = "string"
		case bool:
			k = "bool"
		case int64:
			k = "int"
		case float64:
			k = "float"
		default:
			k = "other"
		}
		if i == 0 {
			kind = k
			continue
		}
		if k != kind {
			return false
		}
	}
	return kind != "other"
}

func encodeJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}
