package ir

import (
	"fmt"

	"fortio.org/safecast"

	"clgen/internal/types"
)

// ValueID identifies a value within its module. Zero is reserved.
type ValueID uint32

// FuncID indexes Module.Funcs.
type FuncID int32

const (
	NoValueID ValueID = 0
	NoFuncID  FuncID  = -1
)

// ValueKind distinguishes the roles a value can play.
type ValueKind uint8

const (
	ValueInvalid ValueKind = iota
	// ValueInstr is the result of an instruction.
	ValueInstr
	// ValueArg is a function parameter.
	ValueArg
	// ValueConstInt is an integer (or i1) constant.
	ValueConstInt
	// ValueConstFloat is a floating-point constant.
	ValueConstFloat
	// ValueNull is a null pointer constant.
	ValueNull
	// ValueUndef is the undefined sentinel.
	ValueUndef
	// ValueGlobal is a module-level variable; its type is a pointer.
	ValueGlobal
	// ValueFunc is a function used as a callee.
	ValueFunc
)

func (k ValueKind) String() string {
	switch k {
	case ValueInstr:
		return "instr"
	case ValueArg:
		return "arg"
	case ValueConstInt:
		return "const.int"
	case ValueConstFloat:
		return "const.float"
	case ValueNull:
		return "null"
	case ValueUndef:
		return "undef"
	case ValueGlobal:
		return "global"
	case ValueFunc:
		return "func"
	default:
		return "invalid"
	}
}

// Value is one SSA value. Values are immutable once built.
type Value struct {
	ID   ValueID
	Kind ValueKind
	Type types.TypeID
	// Name is the source-level hint, possibly empty.
	Name string

	IntValue   int64
	FloatValue float64
	// Func is the owning function for instructions and arguments, and the
	// referenced function for ValueFunc.
	Func FuncID
	// ArgIndex is the parameter position for ValueArg.
	ArgIndex int

	Instr Instr
}

// IsConst reports whether the value renders as a literal.
func (v *Value) IsConst() bool {
	switch v.Kind {
	case ValueConstInt, ValueConstFloat, ValueNull:
		return true
	}
	return false
}

// Func is a function definition or external declaration.
type Func struct {
	ID     FuncID
	Value  ValueID
	Name   string
	Sig    types.TypeID
	Params []ValueID
	Body   []ValueID
	Kernel bool
	// External functions have no body and are resolved by name.
	External bool
}

// Result returns the declared result type.
func (f *Func) Result(typesIn *types.Interner) types.TypeID {
	if info, ok := typesIn.FuncInfo(f.Sig); ok {
		return info.Result
	}
	return typesIn.Builtins().Void
}

// Module owns the type interner and every value.
type Module struct {
	Name    string
	Types   *types.Interner
	Values  []Value
	Funcs   []*Func
	Globals []ValueID
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{
		Name:   name,
		Types:  types.NewInterner(),
		Values: make([]Value, 1, 64), // reserve 0 as invalid sentinel
	}
}

// Value returns the value for id, or nil when id is unknown.
func (m *Module) Value(id ValueID) *Value {
	if id == NoValueID || int(id) >= len(m.Values) {
		return nil
	}
	return &m.Values[id]
}

// Func returns the function for id, or nil.
func (m *Module) Func(id FuncID) *Func {
	if id < 0 || int(id) >= len(m.Funcs) {
		return nil
	}
	return m.Funcs[id]
}

// FuncByName returns the first function with the given name.
func (m *Module) FuncByName(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (m *Module) add(v Value) ValueID {
	raw, err := safecast.Conv[uint32](len(m.Values))
	if err != nil {
		panic(fmt.Errorf("len(values) overflow: %w", err))
	}
	v.ID = ValueID(raw)
	m.Values = append(m.Values, v)
	return v.ID
}

// ConstInt adds an integer constant of type ty.
func (m *Module) ConstInt(ty types.TypeID, v int64) ValueID {
	return m.add(Value{Kind: ValueConstInt, Type: ty, IntValue: v, Func: NoFuncID})
}

// ConstFloat adds a floating-point constant of type ty.
func (m *Module) ConstFloat(ty types.TypeID, v float64) ValueID {
	return m.add(Value{Kind: ValueConstFloat, Type: ty, FloatValue: v, Func: NoFuncID})
}

// Null adds a null pointer constant of pointer type ty.
func (m *Module) Null(ty types.TypeID) ValueID {
	return m.add(Value{Kind: ValueNull, Type: ty, Func: NoFuncID})
}

// Undef adds the undefined sentinel for ty.
func (m *Module) Undef(ty types.TypeID) ValueID {
	return m.add(Value{Kind: ValueUndef, Type: ty, Func: NoFuncID})
}

// NewGlobal adds a module-level variable of elem type in space. The value
// itself is a pointer, as with LLVM globals.
func (m *Module) NewGlobal(name string, elem types.TypeID, space types.AddrSpace) ValueID {
	ptr := m.Types.Pointer(elem, space)
	id := m.add(Value{Kind: ValueGlobal, Type: ptr, Name: name, Func: NoFuncID})
	m.Globals = append(m.Globals, id)
	return id
}

// NewFunc adds a function with a body. paramNames may be shorter than the
// signature; missing names stay empty.
func (m *Module) NewFunc(name string, sig types.TypeID, paramNames ...string) (*Func, error) {
	return m.newFunc(name, sig, false, paramNames)
}

// DeclareFunc adds an external function (intrinsic, builtin or shim).
func (m *Module) DeclareFunc(name string, sig types.TypeID) (*Func, error) {
	if f := m.FuncByName(name); f != nil {
		if f.Sig != sig {
			return nil, fmt.Errorf("function %q redeclared with a different signature", name)
		}
		return f, nil
	}
	return m.newFunc(name, sig, true, nil)
}

func (m *Module) newFunc(name string, sig types.TypeID, external bool, paramNames []string) (*Func, error) {
	info, ok := m.Types.FuncInfo(sig)
	if !ok {
		return nil, fmt.Errorf("function %q: type %d is not a function type", name, sig)
	}
	raw, err := safecast.Conv[int32](len(m.Funcs))
	if err != nil {
		return nil, fmt.Errorf("len(funcs) overflow: %w", err)
	}
	f := &Func{ID: FuncID(raw), Name: name, Sig: sig, External: external}
	f.Value = m.add(Value{Kind: ValueFunc, Type: sig, Name: name, Func: f.ID})
	if !external {
		f.Params = make([]ValueID, len(info.Params))
		for i, pt := range info.Params {
			pname := ""
			if i < len(paramNames) {
				pname = paramNames[i]
			}
			f.Params[i] = m.add(Value{Kind: ValueArg, Type: pt, Name: pname, Func: f.ID, ArgIndex: i})
		}
	}
	m.Funcs = append(m.Funcs, f)
	return f, nil
}
