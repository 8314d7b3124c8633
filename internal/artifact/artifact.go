// Package artifact stores generated modules as msgpack bundles.
package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"

	"clgen/internal/codegen"
)

// SchemaVersion is bumped whenever Bundle changes shape.
const SchemaVersion uint16 = 1

// ErrSchemaMismatch reports a bundle written by an incompatible version.
var ErrSchemaMismatch = errors.New("artifact schema mismatch")

// Bundle is the on-disk form of one generated module.
type Bundle struct {
	Schema    uint16 `msgpack:"schema"`
	Generator string `msgpack:"generator"`
	// Fingerprint is the xxhash of the module's rendered source.
	Fingerprint uint64                   `msgpack:"fingerprint"`
	Module      *codegen.ModuleArtifacts `msgpack:"module"`
}

// New wraps mod with the current schema and its fingerprint.
func New(mod *codegen.ModuleArtifacts, generator string) (*Bundle, error) {
	fp, err := Fingerprint(mod)
	if err != nil {
		return nil, err
	}
	return &Bundle{Schema: SchemaVersion, Generator: generator, Fingerprint: fp, Module: mod}, nil
}

// Fingerprint hashes the OpenCL source mod renders to. Equal modules
// always produce equal fingerprints.
func Fingerprint(mod *codegen.ModuleArtifacts) (uint64, error) {
	h := xxhash.New()
	if err := mod.WriteSource(h); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// Encode writes b to w. Map keys are sorted so equal bundles encode to
// equal bytes.
func Encode(w io.Writer, b *Bundle) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	return enc.Encode(b)
}

// Decode reads a bundle and verifies its schema and fingerprint.
func Decode(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := msgpack.NewDecoder(r).Decode(&b); err != nil {
		return nil, err
	}
	if b.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, b.Schema, SchemaVersion)
	}
	if b.Module == nil {
		return nil, fmt.Errorf("bundle has no module")
	}
	fp, err := Fingerprint(b.Module)
	if err != nil {
		return nil, err
	}
	if fp != b.Fingerprint {
		return nil, fmt.Errorf("module %s: fingerprint %016x does not match contents %016x", b.Module.Name, b.Fingerprint, fp)
	}
	return &b, nil
}

// Marshal returns the encoded bytes of b.
func Marshal(b *Bundle) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes b to path through a temporary file in the same
// directory, so readers never see a partial bundle.
func WriteFile(path string, b *Bundle) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*.mp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err = Encode(f, b); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadFile decodes the bundle at path.
func ReadFile(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}
