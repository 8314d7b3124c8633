package codegen

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"clgen/internal/ir"
	"clgen/internal/trace"
	"clgen/internal/types"
)

// Generator turns ValueInfos into expressions, declarations and inline
// statements, one value at a time.
type Generator struct {
	fc *FuncContext
}

// NewGenerator creates a generator over fc.
func NewGenerator(fc *FuncContext) *Generator {
	return &Generator{fc: fc}
}

// Run generates info. Running an already generated value is a no-op. On
// error info is left as it was.
func (g *Generator) Run(info *ValueInfo) error {
	if info == nil || info.Value == nil {
		return fmt.Errorf("nil value info")
	}
	if info.generated {
		return nil
	}
	v := info.Value

	var err error
	switch v.Kind {
	case ir.ValueArg:
		err = info.SetExpression(info.Name)
	case ir.ValueInstr:
		err = g.genInstr(info, &v.Instr)
	default:
		err = fmt.Errorf("%w: %s value %s is not generated per function", ErrUnhandledInstruction, v.Kind, info.Name)
	}
	if err != nil {
		return err
	}
	info.generated = true
	trace.Point(g.fc.tracer, trace.ScopeValue, "value:"+info.Name, info.expr, g.fc.span)
	return nil
}

func (g *Generator) genInstr(info *ValueInfo, ins *ir.Instr) error {
	switch ins.Op {
	case ir.OpAlloca:
		return g.genAlloca(info, &ins.Alloca)
	case ir.OpBinary:
		return g.genBinary(info, &ins.Binary)
	case ir.OpCompare:
		return g.genCompare(info, &ins.Compare)
	case ir.OpLoad:
		return g.genLoad(info, &ins.Load)
	case ir.OpStore:
		return g.genStore(info, &ins.Store)
	case ir.OpInsertValue:
		return g.genInsertValue(info, &ins.InsertValue)
	case ir.OpExtractValue:
		return g.genExtractValue(info, &ins.ExtractValue)
	case ir.OpGetElementPtr:
		return g.genGEP(info, &ins.GEP)
	case ir.OpCast:
		return g.genCast(info, &ins.Cast)
	case ir.OpSelect:
		return g.genSelect(info, &ins.Select)
	case ir.OpCall:
		return g.genCall(info, &ins.Call)
	case ir.OpReturn:
		return g.genReturn(info, &ins.Return)
	default:
		return fmt.Errorf("%w: %s (value %s)", ErrUnhandledInstruction, ins.Op, info.Name)
	}
}

// Expr returns the text id renders as when used as an operand.
func (g *Generator) Expr(id ir.ValueID) (string, error) {
	return g.operand(id)
}

func errUnknownValue(id ir.ValueID) error {
	return fmt.Errorf("unknown value %d", id)
}

// operand renders id as it appears inside another value's text.
func (g *Generator) operand(id ir.ValueID) (string, error) {
	v := g.fc.Module.Value(id)
	if v == nil {
		return "", errUnknownValue(id)
	}
	switch v.Kind {
	case ir.ValueConstInt:
		return g.intLiteral(v), nil
	case ir.ValueConstFloat:
		return g.floatLiteral(v), nil
	case ir.ValueNull:
		return "0", nil
	case ir.ValueUndef:
		tt, ok := g.fc.Module.Types.Lookup(v.Type)
		if ok && (tt.Kind == types.KindInt || tt.Kind == types.KindFloat || tt.Kind == types.KindPointer) {
			return "0", nil
		}
		return "", fmt.Errorf("%w: undefined aggregate operand %d", ErrNoExpression, id)
	case ir.ValueGlobal:
		// A global's value is its address, like a stack slot's.
		name, err := g.fc.Names.Global.GetOrCreate(v.ID, v.Name)
		if err != nil {
			return "", err
		}
		return "&" + name, nil
	case ir.ValueFunc:
		return g.fc.Names.Global.GetOrCreate(v.ID, v.Name)
	case ir.ValueArg, ir.ValueInstr:
		info, ok := g.fc.Ledger.Lookup(id)
		if !ok {
			return "", fmt.Errorf("%w: operand %d has not been generated", ErrNoExpression, id)
		}
		return info.Expr()
	default:
		return "", fmt.Errorf("%w: operand %d of kind %s", ErrNoExpression, id, v.Kind)
	}
}

// embedded renders id for use inside a larger expression, parenthesized
// unless it is a single token.
func (g *Generator) embedded(id ir.ValueID) (string, error) {
	text, err := g.operand(id)
	if err != nil {
		return "", err
	}
	return paren(text), nil
}

var atomRe = regexp.MustCompile(`^(?:[A-Za-z_][A-Za-z0-9_]*|[0-9][0-9A-Za-z_.+]*)$`)

func paren(text string) string {
	if atomRe.MatchString(text) {
		return text
	}
	return "(" + text + ")"
}

func (g *Generator) intLiteral(v *ir.Value) string {
	tt, _ := g.fc.Module.Types.Lookup(v.Type)
	switch {
	case tt.Width == types.Width1:
		if v.IntValue != 0 {
			return "true"
		}
		return "false"
	case tt.Width == types.Width64 && v.IntValue == math.MinInt64:
		// 9223372036854775808L does not fit in a long.
		return "-9223372036854775807L - 1"
	case tt.Width == types.Width64 && (v.IntValue > math.MaxInt32 || v.IntValue < math.MinInt32):
		return strconv.FormatInt(v.IntValue, 10) + "L"
	}
	return strconv.FormatInt(v.IntValue, 10)
}

func (g *Generator) floatLiteral(v *ir.Value) string {
	tt, _ := g.fc.Module.Types.Lookup(v.Type)
	switch {
	case math.IsNaN(v.FloatValue):
		return "NAN"
	case math.IsInf(v.FloatValue, 1):
		return "INFINITY"
	case math.IsInf(v.FloatValue, -1):
		return "-INFINITY"
	}
	bits := 32
	if tt.Width == types.Width64 {
		bits = 64
	}
	text := strconv.FormatFloat(v.FloatValue, 'g', -1, bits)
	if !strings.ContainsAny(text, ".eE") {
		text += ".0"
	}
	switch tt.Width {
	case types.Width16:
		return text + "h"
	case types.Width64:
		return text
	default:
		return text + "f"
	}
}
