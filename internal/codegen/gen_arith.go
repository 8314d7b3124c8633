package codegen

import (
	"fmt"

	"clgen/internal/ir"
	"clgen/internal/types"
)

var binOpTokens = map[ir.BinOp]string{
	ir.BinAdd:  "+",
	ir.BinSub:  "-",
	ir.BinMul:  "*",
	ir.BinSDiv: "/",
	ir.BinUDiv: "/",
	ir.BinSRem: "%",
	ir.BinURem: "%",
	ir.BinShl:  "<<",
	ir.BinLShr: ">>",
	ir.BinAShr: ">>",
	ir.BinAnd:  "&",
	ir.BinOr:   "|",
	ir.BinXor:  "^",
	ir.BinFAdd: "+",
	ir.BinFSub: "-",
	ir.BinFMul: "*",
	ir.BinFDiv: "/",
}

var predTokens = map[ir.Predicate]string{
	ir.PredEQ:  "==",
	ir.PredNE:  "!=",
	ir.PredSGT: ">",
	ir.PredSGE: ">=",
	ir.PredSLT: "<",
	ir.PredSLE: "<=",
	ir.PredUGT: ">",
	ir.PredUGE: ">=",
	ir.PredULT: "<",
	ir.PredULE: "<=",
	ir.PredOEQ: "==",
	ir.PredOGT: ">",
	ir.PredOGE: ">=",
	ir.PredOLT: "<",
	ir.PredOLE: "<=",
	ir.PredUNE: "!=",
}

// Unordered fcmp predicates hold when either operand is NaN, so they render
// as the negated ordered comparison.
var negatedPredTokens = map[ir.Predicate]string{
	ir.PredFUGT: "<=",
	ir.PredFUGE: "<",
	ir.PredFULT: ">=",
	ir.PredFULE: ">",
}

var predBuiltins = map[ir.Predicate]string{
	ir.PredONE: "islessgreater",
	ir.PredUEQ: "!islessgreater",
	ir.PredORD: "isordered",
	ir.PredUNO: "isunordered",
}

// pair renders both operands for an infix expression. Unsigned operations
// reinterpret them through the unsigned C type first.
func (g *Generator) pair(lhs, rhs ir.ValueID, unsigned bool) (string, string, error) {
	l, err := g.embedded(lhs)
	if err != nil {
		return "", "", err
	}
	r, err := g.embedded(rhs)
	if err != nil {
		return "", "", err
	}
	if unsigned {
		ut, err := g.fc.Types.UnsignedCType(g.fc.Module.Value(lhs).Type)
		if err != nil {
			return "", "", err
		}
		l = "(" + ut + ")" + l
		r = "(" + ut + ")" + r
	}
	return l, r, nil
}

func (g *Generator) genBinary(info *ValueInfo, ins *ir.BinaryInstr) error {
	if ins.Op == ir.BinFRem {
		l, err := g.operand(ins.Left)
		if err != nil {
			return err
		}
		r, err := g.operand(ins.Right)
		if err != nil {
			return err
		}
		return info.SetExpression("fmod(" + l + ", " + r + ")")
	}
	tok, ok := binOpTokens[ins.Op]
	if !ok {
		return fmt.Errorf("%w: binary operator %s", ErrUnhandledInstruction, ins.Op)
	}
	l, r, err := g.pair(ins.Left, ins.Right, ins.Op.Unsigned())
	if err != nil {
		return fmt.Errorf("%s %s: %w", ins.Op, info.Name, err)
	}
	return info.SetExpression(l + " " + tok + " " + r)
}

func (g *Generator) genCompare(info *ValueInfo, ins *ir.CompareInstr) error {
	switch ins.Pred {
	case ir.PredFalse:
		return info.SetExpression("false")
	case ir.PredTrue:
		return info.SetExpression("true")
	}
	if fn, ok := predBuiltins[ins.Pred]; ok {
		l, err := g.operand(ins.Left)
		if err != nil {
			return fmt.Errorf("cmp %s: %w", info.Name, err)
		}
		r, err := g.operand(ins.Right)
		if err != nil {
			return fmt.Errorf("cmp %s: %w", info.Name, err)
		}
		return info.SetExpression(fn + "(" + l + ", " + r + ")")
	}

	tok, negate := negatedPredTokens[ins.Pred]
	if !negate {
		var ok bool
		if tok, ok = predTokens[ins.Pred]; !ok {
			return fmt.Errorf("%w: compare predicate %s", ErrUnhandledInstruction, ins.Pred)
		}
	}
	l, r, err := g.pair(ins.Left, ins.Right, ins.Pred.Unsigned())
	if err != nil {
		return fmt.Errorf("cmp %s: %w", info.Name, err)
	}
	if negate {
		return info.SetExpression("!(" + l + " " + tok + " " + r + ")")
	}
	return info.SetExpression(l + " " + tok + " " + r)
}

func (g *Generator) genSelect(info *ValueInfo, ins *ir.SelectInstr) error {
	var parts [3]string
	for i, id := range []ir.ValueID{ins.Cond, ins.Then, ins.Else} {
		text, err := g.embedded(id)
		if err != nil {
			return fmt.Errorf("select %s: %w", info.Name, err)
		}
		parts[i] = text
	}
	return info.SetExpression(parts[0] + " ? " + parts[1] + " : " + parts[2])
}

// genCast renders conversions as a C cast, bit reinterpretation between
// scalars of equal width as as_<type>(), and truncation to i1 as a low-bit
// test.
func (g *Generator) genCast(info *ValueInfo, ins *ir.CastInstr) error {
	dst := info.Value.Type
	target, err := g.fc.Types.CType(dst)
	if err != nil {
		return fmt.Errorf("cast %s: %w", info.Name, err)
	}
	src, err := g.embedded(ins.Value)
	if err != nil {
		return fmt.Errorf("cast %s: %w", info.Name, err)
	}
	srcType := g.fc.Module.Value(ins.Value).Type

	switch {
	case ins.Op == ir.CastTrunc && g.isBool(dst):
		return info.SetExpression("(bool)(" + src + " & 1)")
	case ins.Op == ir.CastBitcast && !g.isPointer(dst) && !g.isPointer(srcType):
		raw, err := g.operand(ins.Value)
		if err != nil {
			return err
		}
		return info.SetExpression("as_" + target + "(" + raw + ")")
	case ins.Op.UnsignedSource():
		ut, err := g.fc.Types.UnsignedCType(srcType)
		if err != nil {
			return fmt.Errorf("cast %s: %w", info.Name, err)
		}
		return info.SetExpression("(" + target + ")(" + ut + ")" + src)
	}
	return info.SetExpression("(" + target + ")" + src)
}

func (g *Generator) isBool(id types.TypeID) bool {
	tt, ok := g.fc.Module.Types.Lookup(id)
	return ok && tt.Kind == types.KindInt && tt.Width == types.Width1
}

func (g *Generator) isPointer(id types.TypeID) bool {
	tt, ok := g.fc.Module.Types.Lookup(id)
	return ok && tt.Kind == types.KindPointer
}
