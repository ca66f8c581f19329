package envutil

import (
	"reflect"
	"testing"
	"time"
)

func TestEnvReaders(t *testing.T) {
	t.Setenv("EU_STR", "  value ")
	t.Setenv("EU_INT", "42")
	t.Setenv("EU_BAD_INT", "x")
	t.Setenv("EU_BOOL", "off")
	t.Setenv("EU_DUR", "1500ms")
	t.Setenv("EU_DUR_SECS", "3")
	t.Setenv("EU_LIST", "a, b,,c ")

	if got := String("EU_STR", "d"); got != "value" {
		t.Fatalf("String: want=value got=%q", got)
	}
	if got := String("EU_MISSING", "d"); got != "d" {
		t.Fatalf("String default: want=d got=%q", got)
	}
	if got := Int("EU_INT", 1); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
	if got := Int("EU_BAD_INT", 1); got != 1 {
		t.Fatalf("Int bad: want=1 got=%d", got)
	}
	if got := Int64("EU_INT", 1); got != 42 {
		t.Fatalf("Int64: want=42 got=%d", got)
	}
	if got := Bool("EU_BOOL", true); got {
		t.Fatalf("Bool: want=false got=%v", got)
	}
	if got := Bool("EU_MISSING", true); !got {
		t.Fatalf("Bool default: want=true got=%v", got)
	}
	if got := Duration("EU_DUR", time.Second); got != 1500*time.Millisecond {
		t.Fatalf("Duration: want=1.5s got=%v", got)
	}
	if got := Duration("EU_DUR_SECS", time.Second); got != 3*time.Second {
		t.Fatalf("Duration secs: want=3s got=%v", got)
	}
	if got := List("EU_LIST", nil); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("List: got=%v", got)
	}
}
