package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestGraphNodeUnmarshalKeepsKeyOrder(t *testing.T) {
	raw := `{"id":"n1","labels":["Universe"],"properties":{"Name":"Foo","Extra":"bar","created_at":1764688869631,"nested":{"a":1}}}`
	var n GraphNode
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []string{"Name", "Extra", "created_at", "nested"}
	if got := n.PropertyKeys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("PropertyKeys: want=%v got=%v", want, got)
	}
	num, ok := n.Properties["created_at"].(json.Number)
	if !ok || num.String() != "1764688869631" {
		t.Fatalf("created_at: want json.Number 1764688869631 got=%T %v", n.Properties["created_at"], n.Properties["created_at"])
	}
	nested, ok := n.Properties["nested"].(map[string]any)
	if !ok {
		t.Fatalf("nested: want map got=%T", n.Properties["nested"])
	}
	if _, ok := nested["a"].(json.Number); !ok {
		t.Fatalf("nested.a: want json.Number got=%T", nested["a"])
	}
}

func TestGraphNodeUnmarshalNullProperties(t *testing.T) {
	var n GraphNode
	if err := json.Unmarshal([]byte(`{"labels":[],"properties":null}`), &n); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if n.Properties == nil || len(n.Properties) != 0 {
		t.Fatalf("Properties: want empty map got=%v", n.Properties)
	}
}

func TestGraphNodePropertyKeysFallsBackToSorted(t *testing.T) {
	n := GraphNode{Properties: map[string]any{"b": 1, "a": 2}}
	if got := n.PropertyKeys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("PropertyKeys: got=%v", got)
	}
}

func TestMetadataPatchApply(t *testing.T) {
	title := "Old"
	m := GraphMetadata{ID: "4:x:1", Title: &title}
	newTitle := "New"
	synopsis := "s"
	p := MetadataPatch{Title: &newTitle, Synopsis: &synopsis}
	p.Apply(&m)
	if *m.Title != "New" || m.Synopsis == nil || *m.Synopsis != "s" {
		t.Fatalf("Apply: got=%+v", m)
	}
	fields := p.Fields()
	if len(fields) != 2 || fields["title"] != "New" || fields["synopsis"] != "s" {
		t.Fatalf("Fields: got=%v", fields)
	}
}
