package names

import (
	"errors"
	"sync"
	"testing"

	"clgen/internal/ir"
)

func TestSynthesizedNamesCount(t *testing.T) {
	tab := NewTable(ScopeLocal)
	for i, want := range []string{"v1", "v2", "v3"} {
		got, err := tab.GetOrCreate(ir.ValueID(i+1), "")
		if err != nil {
			t.Fatalf("GetOrCreate: %v", err)
		}
		if got != want {
			t.Fatalf("value %d: got %q, want %q", i+1, got, want)
		}
	}
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	tab := NewTable(ScopeLocal)
	first, err := tab.GetOrCreate(7, "v_a")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	// a second request, even with another hint, returns the original binding
	second, err := tab.GetOrCreate(7, "other")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if first != "v_a" || second != "v_a" {
		t.Fatalf("got %q then %q, want v_a twice", first, second)
	}
	if tab.Len() != 1 || tab.Taken("other") {
		t.Fatalf("repeated lookup must not bind a new name")
	}
}

func TestSynthesizedSkipsExplicitNames(t *testing.T) {
	tab := NewTable(ScopeLocal)
	if _, err := tab.GetOrCreate(1, "v1"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := tab.GetOrCreate(2, "v3"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	got := []string{}
	for id := ir.ValueID(3); id <= 5; id++ {
		name, err := tab.GetOrCreate(id, "")
		if err != nil {
			t.Fatalf("GetOrCreate: %v", err)
		}
		got = append(got, name)
	}
	want := []string{"v2", "v4", "v5"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("synthesized names = %v, want %v", got, want)
		}
	}
}

func TestExplicitCollisionFails(t *testing.T) {
	tab := NewTable(ScopeLocal)
	if _, err := tab.GetOrCreate(1, ""); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	_, err := tab.GetOrCreate(2, "v1")
	if !errors.Is(err, ErrNameCollision) {
		t.Fatalf("expected ErrNameCollision, got %v", err)
	}
	if _, ok := tab.Lookup(2); ok {
		t.Fatalf("failed request must not bind")
	}
}

func TestScopesAreDisjoint(t *testing.T) {
	reg := NewRegistry()
	g, err := reg.GetOrCreate(ScopeGlobal, 1, "foo")
	if err != nil {
		t.Fatalf("global: %v", err)
	}
	l, err := reg.GetOrCreate(ScopeLocal, 2, "foo")
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	if g != "foo" || l != "foo" {
		t.Fatalf("got %q/%q", g, l)
	}
	fn := reg.ForFunc()
	if fn.Global != reg.Global {
		t.Fatalf("ForFunc must share the global scope")
	}
	if fn.Local.Taken("foo") {
		t.Fatalf("ForFunc must start with an empty local scope")
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"v_a", "v_a"},
		{"x.addr", "x_addr"},
		{"1st", "_1st"},
		{"int", "int_"},
		{"global", "global_"},
		{"", "_"},
		{"café", "caf_"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTableConcurrentReads(t *testing.T) {
	tab := NewTable(ScopeGlobal)
	for id := ir.ValueID(1); id <= 16; id++ {
		if _, err := tab.GetOrCreate(id, ""); err != nil {
			t.Fatalf("GetOrCreate: %v", err)
		}
	}
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := ir.ValueID(1); id <= 16; id++ {
				if _, ok := tab.Lookup(id); !ok {
					t.Errorf("missing name for %d", id)
				}
			}
		}()
	}
	wg.Wait()
}
