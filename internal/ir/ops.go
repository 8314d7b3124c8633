package ir

import "fmt"

// BinOp enumerates arithmetic and bitwise opcodes.
type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinSDiv
	BinUDiv
	BinSRem
	BinURem
	BinShl
	BinLShr
	BinAShr
	BinAnd
	BinOr
	BinXor
	BinFAdd
	BinFSub
	BinFMul
	BinFDiv
	BinFRem
)

var binOpNames = [...]string{
	BinAdd:  "add",
	BinSub:  "sub",
	BinMul:  "mul",
	BinSDiv: "sdiv",
	BinUDiv: "udiv",
	BinSRem: "srem",
	BinURem: "urem",
	BinShl:  "shl",
	BinLShr: "lshr",
	BinAShr: "ashr",
	BinAnd:  "and",
	BinOr:   "or",
	BinXor:  "xor",
	BinFAdd: "fadd",
	BinFSub: "fsub",
	BinFMul: "fmul",
	BinFDiv: "fdiv",
	BinFRem: "frem",
}

func (op BinOp) String() string {
	if int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return fmt.Sprintf("BinOp(%d)", op)
}

// ParseBinOp maps an opcode mnemonic to a BinOp.
func ParseBinOp(s string) (BinOp, bool) {
	for i, name := range binOpNames {
		if name == s {
			return BinOp(i), true
		}
	}
	return 0, false
}

// Unsigned reports whether the operation treats its operands as unsigned.
func (op BinOp) Unsigned() bool {
	return op == BinUDiv || op == BinURem || op == BinLShr
}

// Predicate enumerates icmp and fcmp predicates. The unordered float
// predicates are distinct from the unsigned integer ones that share their
// mnemonics.
type Predicate uint8

const (
	PredEQ Predicate = iota
	PredNE
	PredSGT
	PredSGE
	PredSLT
	PredSLE
	PredUGT
	PredUGE
	PredULT
	PredULE

	PredFalse
	PredOEQ
	PredONE
	PredOGT
	PredOGE
	PredOLT
	PredOLE
	PredORD
	PredUNO
	PredUEQ
	PredUNE
	PredFUGT
	PredFUGE
	PredFULT
	PredFULE
	PredTrue
)

var predNames = [...]string{
	PredEQ:    "eq",
	PredNE:    "ne",
	PredSGT:   "sgt",
	PredSGE:   "sge",
	PredSLT:   "slt",
	PredSLE:   "sle",
	PredUGT:   "ugt",
	PredUGE:   "uge",
	PredULT:   "ult",
	PredULE:   "ule",
	PredFalse: "false",
	PredOEQ:   "oeq",
	PredONE:   "one",
	PredOGT:   "ogt",
	PredOGE:   "oge",
	PredOLT:   "olt",
	PredOLE:   "ole",
	PredORD:   "ord",
	PredUNO:   "uno",
	PredUEQ:   "ueq",
	PredUNE:   "une",
	PredFUGT:  "ugt",
	PredFUGE:  "uge",
	PredFULT:  "ult",
	PredFULE:  "ule",
	PredTrue:  "true",
}

func (p Predicate) String() string {
	if int(p) < len(predNames) {
		return predNames[p]
	}
	return fmt.Sprintf("Predicate(%d)", p)
}

// Float reports whether p is an fcmp predicate.
func (p Predicate) Float() bool {
	return p >= PredFalse && p <= PredTrue
}

// ParsePredicate maps an icmp mnemonic to a Predicate.
func ParsePredicate(s string) (Predicate, bool) {
	return parsePred(s, PredEQ, PredULE)
}

// ParseFloatPredicate maps an fcmp mnemonic to a Predicate.
func ParseFloatPredicate(s string) (Predicate, bool) {
	return parsePred(s, PredFalse, PredTrue)
}

func parsePred(s string, lo, hi Predicate) (Predicate, bool) {
	for p := lo; p <= hi; p++ {
		if predNames[p] == s {
			return p, true
		}
	}
	return 0, false
}

// Unsigned reports whether an integer predicate compares unsigned.
func (p Predicate) Unsigned() bool {
	return p >= PredUGT && p <= PredULE
}

// CastOp enumerates conversion opcodes.
type CastOp uint8

const (
	CastTrunc CastOp = iota
	CastZExt
	CastSExt
	CastFPTrunc
	CastFPExt
	CastFPToSI
	CastFPToUI
	CastSIToFP
	CastUIToFP
	CastPtrToInt
	CastIntToPtr
	CastBitcast
	CastAddrSpace
)

var castNames = [...]string{
	CastTrunc:     "trunc",
	CastZExt:      "zext",
	CastSExt:      "sext",
	CastFPTrunc:   "fptrunc",
	CastFPExt:     "fpext",
	CastFPToSI:    "fptosi",
	CastFPToUI:    "fptoui",
	CastSIToFP:    "sitofp",
	CastUIToFP:    "uitofp",
	CastPtrToInt:  "ptrtoint",
	CastIntToPtr:  "inttoptr",
	CastBitcast:   "bitcast",
	CastAddrSpace: "addrspacecast",
}

func (op CastOp) String() string {
	if int(op) < len(castNames) {
		return castNames[op]
	}
	return fmt.Sprintf("CastOp(%d)", op)
}

// ParseCastOp maps a cast mnemonic to a CastOp.
func ParseCastOp(s string) (CastOp, bool) {
	for i, name := range castNames {
		if name == s {
			return CastOp(i), true
		}
	}
	return 0, false
}

// UnsignedSource reports whether the source operand is read as unsigned.
func (op CastOp) UnsignedSource() bool {
	return op == CastZExt || op == CastUIToFP
}
