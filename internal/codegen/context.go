package codegen

import (
	"clgen/internal/ir"
	"clgen/internal/names"
	"clgen/internal/trace"
	"clgen/internal/typefmt"
	"clgen/internal/types"
)

// FuncContext is the state shared by every generation step of one function.
// It is not safe for concurrent use; each function gets its own.
type FuncContext struct {
	Module *ir.Module
	Func   *ir.Func
	Names  *names.Registry
	Ledger *Ledger
	Types  *typefmt.Formatter
	Deps   *Deps
	Calls  *CallTable

	Allocas []AllocaRecord

	tracer  trace.Tracer
	span    uint64
	structs []types.TypeID
	seen    map[types.TypeID]struct{}
}

// NewFuncContext prepares generation of f. globals is shared across the
// module; the local scope is fresh. f may be nil when values are generated
// one by one.
func NewFuncContext(m *ir.Module, f *ir.Func, globals *names.Table, calls *CallTable) *FuncContext {
	if globals == nil {
		globals = names.NewTable(names.ScopeGlobal)
	}
	if calls == nil {
		calls = DefaultCallTable()
	}
	return &FuncContext{
		Module: m,
		Func:   f,
		Names:  &names.Registry{Global: globals, Local: names.NewTable(names.ScopeLocal)},
		Ledger: NewLedger(),
		Types:  typefmt.New(m.Types),
		Deps:   NewDeps(),
		Calls:  calls,
		tracer: trace.Nop,
		seen:   make(map[types.TypeID]struct{}),
	}
}

// WithTracer sets the tracer and the parent span for value events.
func (fc *FuncContext) WithTracer(t trace.Tracer, parent uint64) *FuncContext {
	if t == nil {
		t = trace.Nop
	}
	fc.tracer = t
	fc.span = parent
	return fc
}

// Info returns the ValueInfo for id, creating it with the value's own name
// hint when absent.
func (fc *FuncContext) Info(id ir.ValueID) (*ValueInfo, error) {
	v := fc.Module.Value(id)
	if v == nil {
		return nil, errUnknownValue(id)
	}
	return fc.Ledger.GetOrCreate(fc.Names.Local, v, v.Name)
}

// useType records struct types reachable from id so their definitions can
// be emitted before use.
func (fc *FuncContext) useType(id types.TypeID) {
	if _, ok := fc.seen[id]; ok {
		return
	}
	fc.seen[id] = struct{}{}
	tt, ok := fc.Module.Types.Lookup(id)
	if !ok {
		return
	}
	switch tt.Kind {
	case types.KindPointer, types.KindArray, types.KindVector:
		fc.useType(tt.Elem)
	case types.KindStruct:
		if info, ok := fc.Module.Types.StructInfo(id); ok {
			for _, field := range info.Fields {
				fc.useType(field)
			}
		}
		fc.structs = append(fc.structs, id)
	}
}

// Structs lists the struct types used so far, fields before containers.
func (fc *FuncContext) Structs() []types.TypeID {
	return fc.structs
}
