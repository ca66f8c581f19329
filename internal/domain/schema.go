package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// PropertyType is the closed set of value types a schema property can declare.
type PropertyType string

const (
	PropertyTypeString  PropertyType = "string"
	PropertyTypeNumber  PropertyType = "number"
	PropertyTypeBoolean PropertyType = "boolean"
	PropertyTypeDate    PropertyType = "date"
	PropertyTypeArray   PropertyType = "array"
	PropertyTypeObject  PropertyType = "object"
)

var PropertyTypes = []PropertyType{
	PropertyTypeString,
	PropertyTypeNumber,
	PropertyTypeBoolean,
	PropertyTypeDate,
	PropertyTypeArray,
	PropertyTypeObject,
}

func (t PropertyType) Valid() bool {
	for _, pt := range PropertyTypes {
		if t == pt {
			return true
		}
	}
	return false
}

type PropertyDefinition struct {
	Name         string       `json:"name" yaml:"name" validate:"required"`
	Type         PropertyType `json:"type" yaml:"type" validate:"propertytype"`
	Required     bool         `json:"required" yaml:"required"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
	DefaultValue any          `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
}

type NodeSchema struct {
	NodeType   string               `json:"nodeType" yaml:"nodeType" validate:"required"`
	Properties []PropertyDefinition `json:"properties" yaml:"properties" validate:"dive"`
}

// GraphSchema is replaced wholesale on save; there is no partial-update protocol.
type GraphSchema struct {
	NodeSchemas []NodeSchema `json:"nodeSchemas" yaml:"nodeSchemas" validate:"dive"`
}

var schemaValidate *validator.Validate

func init() {
	schemaValidate = validator.New()
	schemaValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = schemaValidate.RegisterValidation("propertytype", func(fl validator.FieldLevel) bool {
		return PropertyType(fl.Field().String()).Valid()
	})
}

// Validate checks field-level rules (non-empty names, known types) and the uniqueness
// invariants: node types are unique in the schema, property names are unique per node schema.
// Names are matched exactly on lookup, so a name with surrounding whitespace is rejected.
func (s GraphSchema) Validate() error {
	const op = "GraphSchema.Validate"
	if err := schemaValidate.Struct(s); err != nil {
		return ValidationError(op, "%s", describeValidation(err))
	}
	seenTypes := make(map[string]struct{}, len(s.NodeSchemas))
	for _, ns := range s.NodeSchemas {
		nodeType := strings.TrimSpace(ns.NodeType)
		if nodeType == "" {
			return ValidationError(op, "nodeType must not be blank")
		}
		if nodeType != ns.NodeType {
			return ValidationError(op, "nodeType %q has surrounding whitespace", ns.NodeType)
		}
		if _, dup := seenTypes[nodeType]; dup {
			return ValidationError(op, "duplicate nodeType %q", nodeType)
		}
		seenTypes[nodeType] = struct{}{}
		if err := ns.checkPropertyNames(); err != nil {
			return ValidationError(op, "%s", err.Error())
		}
	}
	return nil
}

func (ns NodeSchema) checkPropertyNames() error {
	seen := make(map[string]struct{}, len(ns.Properties))
	for _, p := range ns.Properties {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("%s: property name must not be blank", ns.NodeType)
		}
		if name != p.Name {
			return fmt.Errorf("%s: property name %q has surrounding whitespace", ns.NodeType, p.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%s: duplicate property name %q", ns.NodeType, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "propertytype":
			parts = append(parts, fmt.Sprintf("%s: unknown property type %q", field, fe.Value()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// NodeSchema returns the schema for nodeType. Absence is not an error.
func (s GraphSchema) NodeSchema(nodeType string) (NodeSchema, bool) {
	for _, ns := range s.NodeSchemas {
		if ns.NodeType == nodeType {
			return ns, true
		}
	}
	return NodeSchema{}, false
}

func (s GraphSchema) NodeTypes() []string {
	out := make([]string, 0, len(s.NodeSchemas))
	for _, ns := range s.NodeSchemas {
		out = append(out, ns.NodeType)
	}
	return out
}

func (ns NodeSchema) Property(name string) (PropertyDefinition, bool) {
	for _, p := range ns.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyDefinition{}, false
}

func (ns NodeSchema) PropertyNames() []string {
	out := make([]string, 0, len(ns.Properties))
	for _, p := range ns.Properties {
		out = append(out, p.Name)
	}
	return out
}

// Clone returns a copy whose slices can be edited without touching s.
func (s GraphSchema) Clone() GraphSchema {
	out := GraphSchema{NodeSchemas: make([]NodeSchema, 0, len(s.NodeSchemas))}
	for _, ns := range s.NodeSchemas {
		props := make([]PropertyDefinition, len(ns.Properties))
		copy(props, ns.Properties)
		out.NodeSchemas = append(out.NodeSchemas, NodeSchema{NodeType: ns.NodeType, Properties: props})
	}
	return out
}

// PropertyPatch carries the fields to change on a property; nil fields are left as-is.
type PropertyPatch struct {
	Name         *string       `json:"name,omitempty"`
	Type         *PropertyType `json:"type,omitempty"`
	Required     *bool         `json:"required,omitempty"`
	Description  *string       `json:"description,omitempty"`
	DefaultValue *any          `json:"defaultValue,omitempty"`
}

func (p PropertyPatch) Empty() bool {
	return p.Name == nil && p.Type == nil && p.Required == nil && p.Description == nil && p.DefaultValue == nil
}

func (p PropertyPatch) apply(def PropertyDefinition) PropertyDefinition {
	if p.Name != nil {
		def.Name = *p.Name
	}
	if p.Type != nil {
		def.Type = *p.Type
	}
	if p.Required != nil {
		def.Required = *p.Required
	}
	if p.Description != nil {
		def.Description = *p.Description
	}
	if p.DefaultValue != nil {
		def.DefaultValue = *p.DefaultValue
	}
	return def
}

// WithNodeType returns a copy of s with an empty node schema appended.
func (s GraphSchema) WithNodeType(nodeType string) (GraphSchema, error) {
	const op = "GraphSchema.WithNodeType"
	nodeType = strings.TrimSpace(nodeType)
	if nodeType == "" {
		return s, ValidationError(op, "nodeType is required")
	}
	if _, ok := s.NodeSchema(nodeType); ok {
		return s, ValidationError(op, "nodeType %q already exists", nodeType)
	}
	out := s.Clone()
	out.NodeSchemas = append(out.NodeSchemas, NodeSchema{NodeType: nodeType, Properties: []PropertyDefinition{}})
	return out, nil
}

func (s GraphSchema) WithoutNodeType(nodeType string) (GraphSchema, error) {
	out := s.Clone()
	for i, ns := range out.NodeSchemas {
		if ns.NodeType == nodeType {
			out.NodeSchemas = append(out.NodeSchemas[:i], out.NodeSchemas[i+1:]...)
			return out, nil
		}
	}
	return s, NotFoundError("GraphSchema.WithoutNodeType", "unknown nodeType %q", nodeType)
}

// WithProperty returns a copy of s with def appended to nodeType's properties.
func (s GraphSchema) WithProperty(nodeType string, def PropertyDefinition) (GraphSchema, error) {
	out := s.Clone()
	idx := out.indexOf(nodeType)
	if idx < 0 {
		return s, NotFoundError("GraphSchema.WithProperty", "unknown nodeType %q", nodeType)
	}
	if def.Type == "" {
		def.Type = PropertyTypeString
	}
	out.NodeSchemas[idx].Properties = append(out.NodeSchemas[idx].Properties, def)
	return out, nil
}

func (s GraphSchema) WithPropertyPatched(nodeType, name string, patch PropertyPatch) (GraphSchema, error) {
	const op = "GraphSchema.WithPropertyPatched"
	out := s.Clone()
	idx := out.indexOf(nodeType)
	if idx < 0 {
		return s, NotFoundError(op, "unknown nodeType %q", nodeType)
	}
	props := out.NodeSchemas[idx].Properties
	for i := range props {
		if props[i].Name == name {
			props[i] = patch.apply(props[i])
			return out, nil
		}
	}
	return s, NotFoundError(op, "%s has no property %q", nodeType, name)
}

func (s GraphSchema) WithoutProperty(nodeType, name string) (GraphSchema, error) {
	const op = "GraphSchema.WithoutProperty"
	out := s.Clone()
	idx := out.indexOf(nodeType)
	if idx < 0 {
		return s, NotFoundError(op, "unknown nodeType %q", nodeType)
	}
	props := out.NodeSchemas[idx].Properties
	for i := range props {
		if props[i].Name == name {
			out.NodeSchemas[idx].Properties = append(props[:i], props[i+1:]...)
			return out, nil
		}
	}
	return s, NotFoundError(op, "%s has no property %q", nodeType, name)
}

func (s GraphSchema) indexOf(nodeType string) int {
	for i, ns := range s.NodeSchemas {
		if ns.NodeType == nodeType {
			return i
		}
	}
	return -1
}
