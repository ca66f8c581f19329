package domain

import (
	"strings"
	"testing"
)

func sampleSchema() GraphSchema {
	return GraphSchema{NodeSchemas: []NodeSchema{
		{
			NodeType: "universe",
			Properties: []PropertyDefinition{
				{Name: "name", Type: PropertyTypeString, Required: true},
				{Name: "title", Type: PropertyTypeString, Required: true},
				{Name: "created_at", Type: PropertyTypeNumber},
			},
		},
		{
			NodeType: "relation",
			Properties: []PropertyDefinition{
				{Name: "weight", Type: PropertyTypeNumber},
			},
		},
	}}
}

func TestGraphSchemaValidateAcceptsWellFormed(t *testing.T) {
	if err := sampleSchema().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestGraphSchemaValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(s *GraphSchema)
		want   string
	}{
		{
			name: "duplicate property",
			mutate: func(s *GraphSchema) {
				s.NodeSchemas[0].Properties = append(s.NodeSchemas[0].Properties, PropertyDefinition{Name: "title", Type: PropertyTypeString})
			},
			want: `duplicate property name "title"`,
		},
		{
			name:   "blank property name",
			mutate: func(s *GraphSchema) { s.NodeSchemas[1].Properties[0].Name = "" },
			want:   "name is required",
		},
		{
			name:   "whitespace property name",
			mutate: func(s *GraphSchema) { s.NodeSchemas[1].Properties[0].Name = "  " },
			want:   "property name must not be blank",
		},
		{
			name:   "unknown type",
			mutate: func(s *GraphSchema) { s.NodeSchemas[1].Properties[0].Type = "decimal" },
			want:   `unknown property type "decimal"`,
		},
		{
			name:   "duplicate node type",
			mutate: func(s *GraphSchema) { s.NodeSchemas[1].NodeType = "universe" },
			want:   `duplicate nodeType "universe"`,
		},
		{
			name: "padded duplicate property",
			mutate: func(s *GraphSchema) {
				s.NodeSchemas[0].Properties = append(s.NodeSchemas[0].Properties, PropertyDefinition{Name: "title ", Type: PropertyTypeString})
			},
			want: `property name "title " has surrounding whitespace`,
		},
		{
			name:   "padded node type",
			mutate: func(s *GraphSchema) { s.NodeSchemas[0].NodeType = " universe" },
			want:   `nodeType " universe" has surrounding whitespace`,
		},
		{
			name:   "padded rename",
			mutate: func(s *GraphSchema) { s.NodeSchemas[1].Properties[0].Name = "name\t" },
			want:   "has surrounding whitespace",
		},
		{
			name:   "missing node type",
			mutate: func(s *GraphSchema) { s.NodeSchemas[1].NodeType = "" },
			want:   "nodeType is required",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := sampleSchema()
			tc.mutate(&s)
			err := s.Validate()
			if err == nil {
				t.Fatalf("Validate: expected error")
			}
			if !IsCode(err, CodeValidation) {
				t.Fatalf("code: want=%q got=%q", CodeValidation, CodeOf(err))
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("message: want substring %q got=%q", tc.want, err.Error())
			}
		})
	}
}

func TestGraphSchemaCloneIsIndependent(t *testing.T) {
	orig := sampleSchema()
	cp := orig.Clone()
	cp.NodeSchemas[0].Properties[0].Name = "changed"
	if orig.NodeSchemas[0].Properties[0].Name != "name" {
		t.Fatalf("clone shares property slice with original")
	}
}

func TestGraphSchemaPropertyEdits(t *testing.T) {
	s := sampleSchema()

	added, err := s.WithProperty("universe", PropertyDefinition{Name: "synopsis"})
	if err != nil {
		t.Fatalf("WithProperty: %v", err)
	}
	ns, _ := added.NodeSchema("universe")
	p, ok := ns.Property("synopsis")
	if !ok || p.Type != PropertyTypeString {
		t.Fatalf("WithProperty: want synopsis:string got=%+v ok=%v", p, ok)
	}
	if orig, _ := s.NodeSchema("universe"); len(orig.Properties) != 3 {
		t.Fatalf("WithProperty mutated receiver: got %d properties", len(orig.Properties))
	}

	required := true
	patched, err := added.WithPropertyPatched("universe", "synopsis", PropertyPatch{Required: &required})
	if err != nil {
		t.Fatalf("WithPropertyPatched: %v", err)
	}
	ns, _ = patched.NodeSchema("universe")
	if p, _ := ns.Property("synopsis"); !p.Required {
		t.Fatalf("WithPropertyPatched: required not applied")
	}

	removed, err := patched.WithoutProperty("universe", "synopsis")
	if err != nil {
		t.Fatalf("WithoutProperty: %v", err)
	}
	ns, _ = removed.NodeSchema("universe")
	if _, ok := ns.Property("synopsis"); ok {
		t.Fatalf("WithoutProperty: property still present")
	}

	if _, err := s.WithoutProperty("universe", "missing"); !IsCode(err, CodeNotFound) {
		t.Fatalf("WithoutProperty missing: want not_found got=%v", err)
	}
	if _, err := s.WithProperty("scene", PropertyDefinition{Name: "x"}); !IsCode(err, CodeNotFound) {
		t.Fatalf("WithProperty unknown node type: want not_found got=%v", err)
	}
}

func TestGraphSchemaNodeTypeEdits(t *testing.T) {
	s := sampleSchema()
	withScene, err := s.WithNodeType("scene")
	if err != nil {
		t.Fatalf("WithNodeType: %v", err)
	}
	if got := withScene.NodeTypes(); len(got) != 3 || got[2] != "scene" {
		t.Fatalf("NodeTypes: got=%v", got)
	}
	if _, err := withScene.WithNodeType("scene"); !IsCode(err, CodeValidation) {
		t.Fatalf("WithNodeType duplicate: want validation got=%v", err)
	}
	without, err := withScene.WithoutNodeType("universe")
	if err != nil {
		t.Fatalf("WithoutNodeType: %v", err)
	}
	if _, ok := without.NodeSchema("universe"); ok {
		t.Fatalf("WithoutNodeType: universe still present")
	}
}
