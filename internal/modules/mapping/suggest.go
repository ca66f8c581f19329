// Package mapping proposes correspondences between incoming property names and the
// properties a node schema declares.
package mapping

import (
	"strings"

	"github.com/yungbote/graphadmin-backend/internal/domain"
)

// Suggest returns one mapping per source property, in input order. A source property whose name
// matches a declared property case-insensitively is mapped to the declared name; otherwise the
// target defaults to the source name verbatim. A nil node schema yields no mappings.
//
// When several declared names match, the first in schema order wins.
func Suggest(sourceProperties []string, ns *domain.NodeSchema) []domain.PropertyMapping {
	if ns == nil {
		return []domain.PropertyMapping{}
	}
	out := make([]domain.PropertyMapping, 0, len(sourceProperties))
	for _, src := range sourceProperties {
		out = append(out, domain.PropertyMapping{
			SourceProperty: src,
			TargetProperty: matchTarget(src, ns.Properties),
			NodeType:       ns.NodeType,
		})
	}
	return out
}

func matchTarget(src string, props []domain.PropertyDefinition) string {
	for _, p := range props {
		if strings.EqualFold(p.Name, src) {
			return p.Name
		}
	}
	return src
}

// Override replaces the target of every mapping whose source is a key of targets. An empty value
// drops the property. Sources absent from the mappings are ignored.
func Override(mappings []domain.PropertyMapping, targets map[string]string) []domain.PropertyMapping {
	out := make([]domain.PropertyMapping, len(mappings))
	copy(out, mappings)
	for i := range out {
		if t, ok := targets[out[i].SourceProperty]; ok {
			out[i].TargetProperty = t
		}
	}
	return out
}
