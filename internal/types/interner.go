package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	I1      TypeID
	I8      TypeID
	I16     TypeID
	I32     TypeID
	I64     TypeID
	F16     TypeID
	F32     TypeID
	F64     TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Struct types are nominal: each registered name gets its own TypeID.
type Interner struct {
	types       []Type
	index       map[typeKey]TypeID
	builtins    Builtins
	structs     []StructInfo
	structNames map[string]TypeID
	structIDs   []TypeID
	funcs       []FuncInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:       make(map[typeKey]TypeID, 64),
		structNames: make(map[string]TypeID),
	}
	// Slot 0 of structs and funcs is never handed out.
	in.structs = append(in.structs, StructInfo{})
	in.funcs = append(in.funcs, FuncInfo{})
	b := &in.builtins
	b.Invalid = in.internRaw(Type{Kind: KindInvalid})
	b.Void = in.Intern(Type{Kind: KindVoid})
	for _, w := range []struct {
		width Width
		i, f  *TypeID
	}{
		{Width1, &b.I1, nil},
		{Width8, &b.I8, nil},
		{Width16, &b.I16, &b.F16},
		{Width32, &b.I32, &b.F32},
		{Width64, &b.I64, &b.F64},
	} {
		*w.i = in.Intern(MakeInt(w.width))
		if w.f != nil {
			*w.f = in.Intern(MakeFloat(w.width))
		}
	}
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	id := TypeID(slot(len(in.types), "types"))
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Pointer interns a pointer to elem in the given address space.
func (in *Interner) Pointer(elem TypeID, space AddrSpace) TypeID {
	return in.Intern(MakePointer(elem, space))
}

// Array interns a fixed-size array type.
func (in *Interner) Array(elem TypeID, count uint32) TypeID {
	return in.Intern(MakeArray(elem, count))
}

// Vector interns a vector type.
func (in *Interner) Vector(elem TypeID, count uint32) TypeID {
	return in.Intern(MakeVector(elem, count))
}

// RegisterStruct declares a named struct. Registering the same name again
// returns the existing type and leaves its fields untouched.
func (in *Interner) RegisterStruct(name string, fields []TypeID) TypeID {
	if id, ok := in.structNames[name]; ok {
		return id
	}
	payload := slot(len(in.structs), "structs")
	in.structs = append(in.structs, StructInfo{Name: name, Fields: slices.Clone(fields)})
	id := in.internRaw(Type{Kind: KindStruct, Payload: payload})
	in.structNames[name] = id
	in.structIDs = append(in.structIDs, id)
	return id
}

// Structs lists struct types in registration order.
func (in *Interner) Structs() []TypeID {
	return slices.Clone(in.structIDs)
}

func (in *Interner) NumStructs() int { return len(in.structIDs) }

// StructByName finds a previously registered struct.
func (in *Interner) StructByName(name string) (TypeID, bool) {
	id, ok := in.structNames[name]
	return id, ok
}

// StructInfo returns metadata for the provided struct TypeID.
func (in *Interner) StructInfo(id TypeID) (*StructInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindStruct {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.structs) {
		return nil, false
	}
	return &in.structs[tt.Payload], true
}

// Func interns a function signature.
func (in *Interner) Func(result TypeID, params []TypeID) TypeID {
	i := slices.IndexFunc(in.funcs[1:], func(fi FuncInfo) bool {
		return fi.Result == result && slices.Equal(fi.Params, params)
	})
	if i >= 0 {
		return in.Intern(Type{Kind: KindFunc, Payload: slot(i+1, "funcs")})
	}
	payload := slot(len(in.funcs), "funcs")
	in.funcs = append(in.funcs, FuncInfo{Result: result, Params: slices.Clone(params)})
	return in.Intern(Type{Kind: KindFunc, Payload: payload})
}

// FuncInfo returns the signature of a function type.
func (in *Interner) FuncInfo(id TypeID) (*FuncInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFunc {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.funcs) {
		return nil, false
	}
	return &in.funcs[tt.Payload], true
}

// Elem returns the element type of pointers, arrays and vectors.
func (in *Interner) Elem(id TypeID) (TypeID, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return NoTypeID, false
	}
	switch tt.Kind {
	case KindPointer, KindArray, KindVector:
		return tt.Elem, true
	default:
		return NoTypeID, false
	}
}

// IsVoid reports whether id is the void type (or absent).
func (in *Interner) IsVoid(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return !ok || tt.Kind == KindVoid
}

// slot converts a table length into a payload index.
func slot(n int, table string) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("%s table overflow: %w", table, err))
	}
	return v
}

type typeKey struct {
	Kind      Kind
	Elem      TypeID
	Count     uint32
	Width     Width
	AddrSpace AddrSpace
	Payload   uint32
}
