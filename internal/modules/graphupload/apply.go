package graphupload

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/graphadmin-backend/internal/domain"
)

var relTypeRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Result is the coerced batch plus every per-field warning raised while building it.
type Result struct {
	Batch    domain.EntityBatch    `json:"batch"`
	Warnings []domain.FieldWarning `json:"warnings"`
}

// Options tunes Apply. A nil NewKey generates uuids.
type Options struct {
	NewKey func() string
}

// CheckPreconditions is the all-or-nothing gate run before any record is touched. It returns the
// node type every mapping targets.
func CheckPreconditions(data *domain.UploadedGraphData, mappings []domain.PropertyMapping) (string, error) {
	const op = "graphupload.CheckPreconditions"
	if data == nil {
		return "", domain.ValidationError(op, "graph data is required")
	}
	if len(data.Nodes) == 0 {
		return "", domain.ValidationError(op, "graph data has no nodes")
	}
	if len(mappings) == 0 {
		return "", domain.ValidationError(op, "at least one property mapping is required")
	}
	nodeType := strings.TrimSpace(mappings[0].NodeType)
	if nodeType == "" {
		return "", domain.ValidationError(op, "mapping 0 has no nodeType")
	}
	for i, m := range mappings {
		if strings.TrimSpace(m.SourceProperty) == "" {
			return "", domain.ValidationError(op, "mapping %d has no sourceProperty", i)
		}
		if strings.TrimSpace(m.NodeType) != nodeType {
			return "", domain.ValidationError(op, "mapping %d targets nodeType %q, expected %q", i, m.NodeType, nodeType)
		}
	}
	for i, r := range data.Relationships {
		if !relTypeRe.MatchString(r.Type) {
			return "", domain.ValidationError(op, "relationship %d has invalid type %q", i, r.Type)
		}
	}
	return nodeType, nil
}

// trimTargets returns a copy of mappings with surrounding whitespace removed from each target.
func trimTargets(mappings []domain.PropertyMapping) []domain.PropertyMapping {
	out := make([]domain.PropertyMapping, len(mappings))
	for i, m := range mappings {
		m.TargetProperty = strings.TrimSpace(m.TargetProperty)
		out[i] = m
	}
	return out
}

// Apply copies every mapped property of every node into an entity whose keys are exactly the
// non-empty targets of the mappings, trimmed. Unmapped properties never survive. Values are
// coerced toward the declared property types; failures become warnings and the field is omitted.
func Apply(data *domain.UploadedGraphData, mappings []domain.PropertyMapping, ns domain.NodeSchema, opts Options) (Result, error) {
	nodeType, err := CheckPreconditions(data, mappings)
	if err != nil {
		return Result{}, err
	}
	if ns.NodeType != nodeType {
		return Result{}, domain.ValidationError("graphupload.Apply", "mappings target %q but node schema is %q", nodeType, ns.NodeType)
	}
	mappings = trimTargets(mappings)
	newKey := opts.NewKey
	if newKey == nil {
		newKey = uuid.NewString
	}

	res := Result{
		Batch: domain.EntityBatch{
			NodeType: nodeType,
			Entities: make([]domain.Entity, 0, len(data.Nodes)),
		},
		Warnings: []domain.FieldWarning{},
	}
	warnedUndeclared := map[string]bool{}
	mappedTargets := map[string]bool{}
	for _, m := range mappings {
		if !m.Dropped() {
			mappedTargets[m.TargetProperty] = true
		}
	}

	keysByID := make(map[string]string, len(data.Nodes))
	for idx, node := range data.Nodes {
		key := strings.TrimSpace(node.ID)
		if key == "" {
			key = newKey()
		} else {
			keysByID[node.ID] = key
		}
		props := map[string]any{}

		for _, m := range mappings {
			raw, ok := node.Properties[m.SourceProperty]
			if !ok || m.Dropped() {
				continue
			}
			target := m.TargetProperty
			def, declared := ns.Property(target)
			if !declared {
				if raw == nil {
					continue
				}
				props[target] = raw
				if !warnedUndeclared[target] {
					warnedUndeclared[target] = true
					res.Warnings = append(res.Warnings, domain.FieldWarning{
						Code:           domain.WarningUndeclaredProperty,
						NodeIndex:      idx,
						NodeKey:        key,
						SourceProperty: m.SourceProperty,
						TargetProperty: target,
						Message:        fmt.Sprintf("%q is not declared on %s; copied without coercion", target, nodeType),
					})
				}
				continue
			}

			val, warn, cerr := Coerce(raw, def.Type)
			if cerr != nil {
				res.Warnings = append(res.Warnings, domain.FieldWarning{
					Code:           domain.WarningCoercionFailed,
					NodeIndex:      idx,
					NodeKey:        key,
					SourceProperty: m.SourceProperty,
					TargetProperty: target,
					Type:           def.Type,
					Value:          raw,
					Message:        fmt.Sprintf("cannot convert value to %s; field omitted", def.Type),
				})
				continue
			}
			if val == nil {
				continue
			}
			if warn != "" {
				res.Warnings = append(res.Warnings, domain.FieldWarning{
					Code:           warn,
					NodeIndex:      idx,
					NodeKey:        key,
					SourceProperty: m.SourceProperty,
					TargetProperty: target,
					Type:           def.Type,
					Message:        fmt.Sprintf("composite value encoded as %s", def.Type),
				})
			}
			props[target] = val
		}

		for _, def := range ns.Properties {
			if _, ok := props[def.Name]; ok {
				continue
			}
			if def.DefaultValue != nil && mappedTargets[def.Name] {
				if val, _, derr := Coerce(def.DefaultValue, def.Type); derr == nil && val != nil {
					props[def.Name] = val
					continue
				}
			}
			if def.Required {
				res.Warnings = append(res.Warnings, domain.FieldWarning{
					Code:           domain.WarningMissingRequired,
					NodeIndex:      idx,
					NodeKey:        key,
					TargetProperty: def.Name,
					Type:           def.Type,
					Message:        fmt.Sprintf("required property %q has no value", def.Name),
				})
			}
		}

		res.Batch.Entities = append(res.Batch.Entities, domain.Entity{
			Key:        key,
			NodeType:   nodeType,
			Properties: props,
		})
	}

	for i, r := range data.Relationships {
		src, okSrc := keysByID[r.Source]
		dst, okDst := keysByID[r.Target]
		if !okSrc || !okDst {
			res.Warnings = append(res.Warnings, domain.FieldWarning{
				Code:      domain.WarningDanglingRelationship,
				NodeIndex: -1,
				Message:   fmt.Sprintf("relationship %d (%s -[%s]-> %s) references a node outside the batch; skipped", i, r.Source, r.Type, r.Target),
			})
			continue
		}
		res.Batch.Relationships = append(res.Batch.Relationships, domain.EntityRelationship{
			SourceKey:  src,
			TargetKey:  dst,
			Type:       r.Type,
			Properties: r.Properties,
		})
	}
	return res, nil
}
