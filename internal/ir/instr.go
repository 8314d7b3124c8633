package ir

import "clgen/internal/types"

// Op enumerates instruction kinds.
type Op uint8

const (
	// OpInvalid marks an uninitialized instruction.
	OpInvalid Op = iota
	// OpAlloca reserves a stack slot.
	OpAlloca
	// OpBinary is an arithmetic or bitwise operation.
	OpBinary
	// OpCompare is an integer or float comparison.
	OpCompare
	// OpLoad reads through a pointer.
	OpLoad
	// OpStore writes through a pointer.
	OpStore
	// OpInsertValue replaces one field of an aggregate.
	OpInsertValue
	// OpExtractValue reads one field of an aggregate.
	OpExtractValue
	// OpGetElementPtr computes an address inside an aggregate or array.
	OpGetElementPtr
	// OpCast converts a value between types.
	OpCast
	// OpSelect picks one of two values.
	OpSelect
	// OpCall invokes a function.
	OpCall
	// OpReturn leaves the function.
	OpReturn
)

func (op Op) String() string {
	switch op {
	case OpAlloca:
		return "alloca"
	case OpBinary:
		return "binary"
	case OpCompare:
		return "compare"
	case OpLoad:
		return "load"
	case OpStore:
		return "store"
	case OpInsertValue:
		return "insertvalue"
	case OpExtractValue:
		return "extractvalue"
	case OpGetElementPtr:
		return "getelementptr"
	case OpCast:
		return "cast"
	case OpSelect:
		return "select"
	case OpCall:
		return "call"
	case OpReturn:
		return "ret"
	default:
		return "invalid"
	}
}

// Instr is a tagged variant: only the payload matching Op is meaningful.
type Instr struct {
	Op Op

	Alloca       AllocaInstr
	Binary       BinaryInstr
	Compare      CompareInstr
	Load         LoadInstr
	Store        StoreInstr
	InsertValue  InsertValueInstr
	ExtractValue ExtractValueInstr
	GEP          GEPInstr
	Cast         CastInstr
	Select       SelectInstr
	Call         CallInstr
	Return       ReturnInstr
}

// AllocaInstr reserves Count elements of Elem.
type AllocaInstr struct {
	Elem  types.TypeID
	Count uint32
}

// BinaryInstr applies Op to Left and Right.
type BinaryInstr struct {
	Op    BinOp
	Left  ValueID
	Right ValueID
}

// CompareInstr compares Left and Right with Pred.
type CompareInstr struct {
	Pred  Predicate
	Left  ValueID
	Right ValueID
}

// LoadInstr reads the pointee of Ptr.
type LoadInstr struct {
	Ptr ValueID
}

// StoreInstr writes Value to the pointee of Ptr.
type StoreInstr struct {
	Value ValueID
	Ptr   ValueID
}

// InsertValueInstr yields Agg with the field at Indices replaced by Value.
type InsertValueInstr struct {
	Agg     ValueID
	Value   ValueID
	Indices []uint32
}

// ExtractValueInstr yields the field of Agg at Indices.
type ExtractValueInstr struct {
	Agg     ValueID
	Indices []uint32
}

// GEPInstr offsets Base by Indices. The first index steps over the pointer,
// later ones select struct fields (constant) or array elements.
type GEPInstr struct {
	Base    ValueID
	Indices []ValueID
}

// CastInstr converts Value to the instruction's result type.
type CastInstr struct {
	Op    CastOp
	Value ValueID
}

// SelectInstr yields Then when Cond holds, Else otherwise.
type SelectInstr struct {
	Cond ValueID
	Then ValueID
	Else ValueID
}

// CallInstr calls Callee (a function value) with Args.
type CallInstr struct {
	Callee ValueID
	Args   []ValueID
}

// ReturnInstr leaves the function, optionally with a value.
type ReturnInstr struct {
	HasValue bool
	Value    ValueID
}

// Operands lists the values an instruction reads, in operand order.
func (ins *Instr) Operands() []ValueID {
	switch ins.Op {
	case OpBinary:
		return []ValueID{ins.Binary.Left, ins.Binary.Right}
	case OpCompare:
		return []ValueID{ins.Compare.Left, ins.Compare.Right}
	case OpLoad:
		return []ValueID{ins.Load.Ptr}
	case OpStore:
		return []ValueID{ins.Store.Value, ins.Store.Ptr}
	case OpInsertValue:
		return []ValueID{ins.InsertValue.Agg, ins.InsertValue.Value}
	case OpExtractValue:
		return []ValueID{ins.ExtractValue.Agg}
	case OpGetElementPtr:
		out := make([]ValueID, 0, len(ins.GEP.Indices)+1)
		out = append(out, ins.GEP.Base)
		return append(out, ins.GEP.Indices...)
	case OpCast:
		return []ValueID{ins.Cast.Value}
	case OpSelect:
		return []ValueID{ins.Select.Cond, ins.Select.Then, ins.Select.Else}
	case OpCall:
		out := make([]ValueID, 0, len(ins.Call.Args)+1)
		out = append(out, ins.Call.Callee)
		return append(out, ins.Call.Args...)
	case OpReturn:
		if ins.Return.HasValue {
			return []ValueID{ins.Return.Value}
		}
	}
	return nil
}
