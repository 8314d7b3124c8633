package ir

import (
	"fmt"

	"clgen/internal/types"
)

// Builder appends instructions to the body of one function, in program order.
type Builder struct {
	m *Module
	f *Func
}

// NewBuilder positions a builder at the end of f's body.
func NewBuilder(m *Module, f *Func) *Builder {
	return &Builder{m: m, f: f}
}

// Func returns the function being built.
func (b *Builder) Func() *Func { return b.f }

func (b *Builder) emit(ty types.TypeID, name string, ins Instr) ValueID {
	id := b.m.add(Value{Kind: ValueInstr, Type: ty, Name: name, Func: b.f.ID, Instr: ins})
	b.f.Body = append(b.f.Body, id)
	return id
}

func (b *Builder) value(id ValueID) (*Value, error) {
	v := b.m.Value(id)
	if v == nil {
		return nil, fmt.Errorf("unknown value %d", id)
	}
	return v, nil
}

func (b *Builder) kind(id types.TypeID) types.Kind {
	tt, ok := b.m.Types.Lookup(id)
	if !ok {
		return types.KindInvalid
	}
	return tt.Kind
}

// Alloca reserves count elements of elem on the stack. count 0 means 1.
func (b *Builder) Alloca(elem types.TypeID, count uint32, name string) ValueID {
	if count == 0 {
		count = 1
	}
	ptr := b.m.Types.Pointer(elem, types.AddrPrivate)
	return b.emit(ptr, name, Instr{Op: OpAlloca, Alloca: AllocaInstr{Elem: elem, Count: count}})
}

// Binary emits lhs op rhs. Both operands must share a type.
func (b *Builder) Binary(op BinOp, lhs, rhs ValueID, name string) (ValueID, error) {
	l, err := b.value(lhs)
	if err != nil {
		return NoValueID, err
	}
	r, err := b.value(rhs)
	if err != nil {
		return NoValueID, err
	}
	if l.Type != r.Type {
		return NoValueID, fmt.Errorf("%s: operand types differ (%d vs %d)", op, l.Type, r.Type)
	}
	return b.emit(l.Type, name, Instr{Op: OpBinary, Binary: BinaryInstr{Op: op, Left: lhs, Right: rhs}}), nil
}

// Add is shorthand for Binary(BinAdd, ...).
func (b *Builder) Add(lhs, rhs ValueID, name string) (ValueID, error) {
	return b.Binary(BinAdd, lhs, rhs, name)
}

// Compare emits an icmp/fcmp yielding i1.
func (b *Builder) Compare(pred Predicate, lhs, rhs ValueID, name string) (ValueID, error) {
	l, err := b.value(lhs)
	if err != nil {
		return NoValueID, err
	}
	r, err := b.value(rhs)
	if err != nil {
		return NoValueID, err
	}
	if l.Type != r.Type {
		return NoValueID, fmt.Errorf("cmp %s: operand types differ (%d vs %d)", pred, l.Type, r.Type)
	}
	scalar := l.Type
	if b.kind(scalar) == types.KindVector {
		scalar, _ = b.m.Types.Elem(scalar)
	}
	if isFloat := b.kind(scalar) == types.KindFloat; isFloat != pred.Float() {
		return NoValueID, fmt.Errorf("cmp %s: predicate does not apply to %s operands", pred, b.kind(scalar))
	}
	i1 := b.m.Types.Builtins().I1
	return b.emit(i1, name, Instr{Op: OpCompare, Compare: CompareInstr{Pred: pred, Left: lhs, Right: rhs}}), nil
}

// Load reads the pointee of ptr.
func (b *Builder) Load(ptr ValueID, name string) (ValueID, error) {
	p, err := b.value(ptr)
	if err != nil {
		return NoValueID, err
	}
	if b.kind(p.Type) != types.KindPointer {
		return NoValueID, fmt.Errorf("load: operand %d is not a pointer", ptr)
	}
	elem, _ := b.m.Types.Elem(p.Type)
	return b.emit(elem, name, Instr{Op: OpLoad, Load: LoadInstr{Ptr: ptr}}), nil
}

// Store writes val through ptr.
func (b *Builder) Store(val, ptr ValueID) (ValueID, error) {
	if _, err := b.value(val); err != nil {
		return NoValueID, err
	}
	p, err := b.value(ptr)
	if err != nil {
		return NoValueID, err
	}
	if b.kind(p.Type) != types.KindPointer {
		return NoValueID, fmt.Errorf("store: operand %d is not a pointer", ptr)
	}
	void := b.m.Types.Builtins().Void
	return b.emit(void, "", Instr{Op: OpStore, Store: StoreInstr{Value: val, Ptr: ptr}}), nil
}

// FieldType walks indices through nested structs and arrays of agg.
func (b *Builder) FieldType(agg types.TypeID, indices []uint32) (types.TypeID, error) {
	cur := agg
	for _, idx := range indices {
		tt, ok := b.m.Types.Lookup(cur)
		if !ok {
			return types.NoTypeID, fmt.Errorf("unknown type %d", cur)
		}
		switch tt.Kind {
		case types.KindStruct:
			info, _ := b.m.Types.StructInfo(cur)
			if info == nil || int(idx) >= len(info.Fields) {
				return types.NoTypeID, fmt.Errorf("field index %d out of range", idx)
			}
			cur = info.Fields[idx]
		case types.KindArray, types.KindVector:
			if idx >= tt.Count {
				return types.NoTypeID, fmt.Errorf("element index %d out of range", idx)
			}
			cur = tt.Elem
		default:
			return types.NoTypeID, fmt.Errorf("cannot index into %s", tt.Kind)
		}
	}
	return cur, nil
}

// InsertValue yields agg with the field at indices replaced by val.
func (b *Builder) InsertValue(agg, val ValueID, name string, indices ...uint32) (ValueID, error) {
	a, err := b.value(agg)
	if err != nil {
		return NoValueID, err
	}
	if len(indices) == 0 {
		return NoValueID, fmt.Errorf("insertvalue: no indices")
	}
	if _, err := b.FieldType(a.Type, indices); err != nil {
		return NoValueID, fmt.Errorf("insertvalue: %w", err)
	}
	ins := Instr{Op: OpInsertValue, InsertValue: InsertValueInstr{Agg: agg, Value: val, Indices: append([]uint32(nil), indices...)}}
	return b.emit(a.Type, name, ins), nil
}

// ExtractValue yields the field of agg at indices.
func (b *Builder) ExtractValue(agg ValueID, name string, indices ...uint32) (ValueID, error) {
	a, err := b.value(agg)
	if err != nil {
		return NoValueID, err
	}
	if len(indices) == 0 {
		return NoValueID, fmt.Errorf("extractvalue: no indices")
	}
	ft, err := b.FieldType(a.Type, indices)
	if err != nil {
		return NoValueID, fmt.Errorf("extractvalue: %w", err)
	}
	ins := Instr{Op: OpExtractValue, ExtractValue: ExtractValueInstr{Agg: agg, Indices: append([]uint32(nil), indices...)}}
	return b.emit(ft, name, ins), nil
}

// GEP computes an element address. Struct steps need constant indices.
func (b *Builder) GEP(base ValueID, name string, indices ...ValueID) (ValueID, error) {
	p, err := b.value(base)
	if err != nil {
		return NoValueID, err
	}
	tt, ok := b.m.Types.Lookup(p.Type)
	if !ok || tt.Kind != types.KindPointer {
		return NoValueID, fmt.Errorf("getelementptr: base %d is not a pointer", base)
	}
	if len(indices) == 0 {
		return NoValueID, fmt.Errorf("getelementptr: no indices")
	}
	cur := tt.Elem
	for _, idxID := range indices[1:] {
		idx, err := b.value(idxID)
		if err != nil {
			return NoValueID, err
		}
		switch b.kind(cur) {
		case types.KindStruct:
			if idx.Kind != ValueConstInt {
				return NoValueID, fmt.Errorf("getelementptr: struct index must be constant")
			}
			info, _ := b.m.Types.StructInfo(cur)
			if idx.IntValue < 0 || int(idx.IntValue) >= len(info.Fields) {
				return NoValueID, fmt.Errorf("getelementptr: field index %d out of range", idx.IntValue)
			}
			cur = info.Fields[idx.IntValue]
		case types.KindArray, types.KindVector:
			cur, _ = b.m.Types.Elem(cur)
		default:
			return NoValueID, fmt.Errorf("getelementptr: cannot index into type %d", cur)
		}
	}
	ptr := b.m.Types.Pointer(cur, tt.AddrSpace)
	ins := Instr{Op: OpGetElementPtr, GEP: GEPInstr{Base: base, Indices: append([]ValueID(nil), indices...)}}
	return b.emit(ptr, name, ins), nil
}

// Cast converts val to ty.
func (b *Builder) Cast(op CastOp, val ValueID, ty types.TypeID, name string) (ValueID, error) {
	if _, err := b.value(val); err != nil {
		return NoValueID, err
	}
	if _, ok := b.m.Types.Lookup(ty); !ok {
		return NoValueID, fmt.Errorf("%s: unknown target type %d", op, ty)
	}
	return b.emit(ty, name, Instr{Op: OpCast, Cast: CastInstr{Op: op, Value: val}}), nil
}

// Select yields then when cond holds, otherwise els.
func (b *Builder) Select(cond, then, els ValueID, name string) (ValueID, error) {
	if _, err := b.value(cond); err != nil {
		return NoValueID, err
	}
	t, err := b.value(then)
	if err != nil {
		return NoValueID, err
	}
	e, err := b.value(els)
	if err != nil {
		return NoValueID, err
	}
	if t.Type != e.Type {
		return NoValueID, fmt.Errorf("select: arm types differ (%d vs %d)", t.Type, e.Type)
	}
	return b.emit(t.Type, name, Instr{Op: OpSelect, Select: SelectInstr{Cond: cond, Then: then, Else: els}}), nil
}

// Call invokes callee with args; the result type is the callee's.
func (b *Builder) Call(callee *Func, name string, args ...ValueID) (ValueID, error) {
	if callee == nil {
		return NoValueID, fmt.Errorf("call: nil callee")
	}
	info, ok := b.m.Types.FuncInfo(callee.Sig)
	if !ok {
		return NoValueID, fmt.Errorf("call %s: missing signature", callee.Name)
	}
	if len(args) != len(info.Params) {
		return NoValueID, fmt.Errorf("call %s: want %d args, got %d", callee.Name, len(info.Params), len(args))
	}
	for _, a := range args {
		if _, err := b.value(a); err != nil {
			return NoValueID, err
		}
	}
	ins := Instr{Op: OpCall, Call: CallInstr{Callee: callee.Value, Args: append([]ValueID(nil), args...)}}
	return b.emit(info.Result, name, ins), nil
}

// Return leaves the function with val.
func (b *Builder) Return(val ValueID) (ValueID, error) {
	if _, err := b.value(val); err != nil {
		return NoValueID, err
	}
	void := b.m.Types.Builtins().Void
	return b.emit(void, "", Instr{Op: OpReturn, Return: ReturnInstr{HasValue: true, Value: val}}), nil
}

// ReturnVoid leaves the function without a value.
func (b *Builder) ReturnVoid() ValueID {
	void := b.m.Types.Builtins().Void
	return b.emit(void, "", Instr{Op: OpReturn})
}
