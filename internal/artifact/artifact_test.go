package artifact

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"clgen/internal/codegen"
)

func sampleModule() *codegen.ModuleArtifacts {
	return &codegen.ModuleArtifacts{
		Name:    "kernels",
		Globals: []string{"constant float table[16];"},
		Funcs: []*codegen.FuncArtifacts{{
			Name:         "mykernel",
			Signature:    "kernel void mykernel(global int* out, int n)",
			Kernel:       true,
			Allocas:      []codegen.AllocaRecord{{Name: "x", Elem: 3, Count: 1}},
			Declarations: []string{"    int x[1];\n"},
			Statements:   []string{"    x[0] = n;\n", "    return;\n"},
			Exprs:        map[string]string{"x": "x", "n": "n", "out": "out"},
		}},
	}
}

func TestBundleRoundTripsThroughFile(t *testing.T) {
	b, err := New(sampleModule(), "test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out", "kernels.mp")
	if err := WriteFile(path, b); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	opts := cmp.Options{cmpopts.IgnoreUnexported(codegen.FuncArtifacts{}), cmpopts.EquateEmpty()}
	if diff := cmp.Diff(b, got, opts); diff != "" {
		t.Fatalf("bundle mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	b, err := New(sampleModule(), "test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	first, err := Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Marshal(b)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding %d differs", i)
		}
	}
}

func TestFingerprintTracksSource(t *testing.T) {
	a, _ := Fingerprint(sampleModule())
	b, _ := Fingerprint(sampleModule())
	if a != b {
		t.Fatalf("equal modules hash differently")
	}
	changed := sampleModule()
	changed.Funcs[0].Statements[0] = "    x[0] = 0;\n"
	if c, _ := Fingerprint(changed); c == a {
		t.Fatalf("changed source kept fingerprint %016x", c)
	}
}

func TestDecodeRejects(t *testing.T) {
	stale, _ := New(sampleModule(), "test")
	stale.Schema = SchemaVersion + 1
	data, err := Marshal(stale)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if _, err := Decode(bytes.NewReader(data)); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("got %v, want ErrSchemaMismatch", err)
	}

	tampered, _ := New(sampleModule(), "test")
	tampered.Fingerprint++
	data, err = Marshal(tampered)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if _, err := Decode(bytes.NewReader(data)); err == nil {
		t.Fatalf("tampered fingerprint must fail")
	}
}
