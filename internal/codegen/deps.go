package codegen

import (
	"slices"

	"github.com/samber/lo"

	"clgen/internal/ir"
	"clgen/internal/types"
)

// Deps accumulates what generated code needs from outside: runtime shim
// helpers and other user functions. Sets only grow.
type Deps struct {
	shims     map[string]struct{}
	functions map[ir.FuncID]struct{}
}

// NewDeps creates empty dependency sets.
func NewDeps() *Deps {
	return &Deps{
		shims:     make(map[string]struct{}),
		functions: make(map[ir.FuncID]struct{}),
	}
}

// AddShim records a runtime-provided helper.
func (d *Deps) AddShim(name string) { d.shims[name] = struct{}{} }

// AddFunction records a referenced user function.
func (d *Deps) AddFunction(id ir.FuncID) { d.functions[id] = struct{}{} }

// HasShim reports whether name was recorded.
func (d *Deps) HasShim(name string) bool {
	_, ok := d.shims[name]
	return ok
}

// HasFunction reports whether id was recorded.
func (d *Deps) HasFunction(id ir.FuncID) bool {
	_, ok := d.functions[id]
	return ok
}

// Shims returns the shim names sorted.
func (d *Deps) Shims() []string {
	out := lo.Keys(d.shims)
	slices.Sort(out)
	return out
}

// Functions returns the referenced function IDs sorted.
func (d *Deps) Functions() []ir.FuncID {
	out := lo.Keys(d.functions)
	slices.Sort(out)
	return out
}

// Merge adds everything in other to d.
func (d *Deps) Merge(other *Deps) {
	if other == nil {
		return
	}
	for name := range other.shims {
		d.shims[name] = struct{}{}
	}
	for id := range other.functions {
		d.functions[id] = struct{}{}
	}
}

// AllocaRecord describes one stack slot for hoisting to function entry.
type AllocaRecord struct {
	Name  string       `msgpack:"name"`
	Elem  types.TypeID `msgpack:"elem"`
	Count uint32       `msgpack:"count"`
}
