package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindInt
	KindFloat
	KindPointer
	KindArray
	KindVector
	KindStruct
	KindFunc
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindVector:
		return "vector"
	case KindStruct:
		return "struct"
	case KindFunc:
		return "func"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats in bits.
type Width uint8

const (
	Width1  Width = 1
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// AddrSpace is the memory region a pointer refers to.
type AddrSpace uint8

const (
	AddrPrivate  AddrSpace = 0
	AddrGlobal   AddrSpace = 1
	AddrLocal    AddrSpace = 3
	AddrConstant AddrSpace = 4
)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind      Kind
	Elem      TypeID
	Count     uint32    // arrays and vectors
	Width     Width     // numeric primitives
	AddrSpace AddrSpace // pointers
	Payload   uint32    // index into struct/func side tables
}

// StructInfo stores the declared name and field types of a struct.
type StructInfo struct {
	Name   string
	Fields []TypeID
}

// FuncInfo stores the signature of a function type.
type FuncInfo struct {
	Result TypeID
	Params []TypeID
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes an integer of the given bit width.
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakePointer describes a pointer into the given address space.
func MakePointer(elem TypeID, space AddrSpace) Type {
	return Type{Kind: KindPointer, Elem: elem, AddrSpace: space}
}

// MakeArray describes a fixed-size array.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeVector describes a short SIMD vector such as float4.
func MakeVector(elem TypeID, count uint32) Type {
	return Type{Kind: KindVector, Elem: elem, Count: count}
}
