package logger

import "testing"

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]interface{}{
		"neo4j_password", "hunter2",
		"postgres_dsn", "host=db",
		"changed_by", "alice",
		"uri", "bolt://neo4j:pw@localhost:7687",
		"node_type", "universe",
		"dangling",
	})
	if got[1] != "[REDACTED]" {
		t.Fatalf("password: want=[REDACTED] got=%v", got[1])
	}
	if got[3] != "[REDACTED]" {
		t.Fatalf("dsn: want=[REDACTED] got=%v", got[3])
	}
	if s, _ := got[5].(string); len(s) != len("hash:")+12 {
		t.Fatalf("changed_by: want hashed got=%v", got[5])
	}
	if got[7] != "[REDACTED]" {
		t.Fatalf("uri with credentials: want=[REDACTED] got=%v", got[7])
	}
	if got[9] != "universe" {
		t.Fatalf("node_type: want=universe got=%v", got[9])
	}
	if len(got) != 11 || got[10] != "dangling" {
		t.Fatalf("odd trailing key: got=%v", got)
	}
}

func TestSanitizeNested(t *testing.T) {
	v := sanitizeValue("payload", map[string]interface{}{
		"api_key": "k",
		"list":    []interface{}{"plain"},
	})
	m, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("want map got=%T", v)
	}
	if m["api_key"] != "[REDACTED]" {
		t.Fatalf("nested api_key: got=%v", m["api_key"])
	}
	if l, _ := m["list"].([]interface{}); len(l) != 1 || l[0] != "plain" {
		t.Fatalf("nested list: got=%v", m["list"])
	}
}

func TestLooksLikeURLWithCredentials(t *testing.T) {
	cases := map[string]bool{
		"postgres://u:p@h/db":  true,
		"bolt://localhost:7687": false,
		"https://cdn.example/x": false,
		"plain":                 false,
	}
	for in, want := range cases {
		if got := looksLikeURLWithCredentials(in); got != want {
			t.Fatalf("%q: want=%v got=%v", in, want, got)
		}
	}
}
