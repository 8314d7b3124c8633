package fixture

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"clgen/internal/ir"
	"clgen/internal/types"
)

type bodyScope struct {
	m      *ir.Module
	b      *ir.Builder
	locals map[string]ir.ValueID
}

func buildBody(m *ir.Module, fn *ir.Func, instrs []instrDecl) error {
	s := &bodyScope{m: m, b: ir.NewBuilder(m, fn), locals: make(map[string]ir.ValueID)}
	for _, id := range fn.Params {
		if name := m.Value(id).Name; name != "" {
			s.locals[name] = id
		}
	}
	for i := range instrs {
		ins := &instrs[i]
		id, err := s.instr(ins)
		if err != nil {
			return fmt.Errorf("instr %d (%s): %w", i, ins.Op, err)
		}
		if ins.Name == "" {
			continue
		}
		if _, dup := s.locals[ins.Name]; dup {
			return fmt.Errorf("instr %d: %%%s defined twice", i, ins.Name)
		}
		s.locals[ins.Name] = id
	}
	return nil
}

func (s *bodyScope) args(ins *instrDecl, want int) ([]ir.ValueID, error) {
	if want >= 0 && len(ins.Args) != want {
		return nil, fmt.Errorf("want %d args, got %d", want, len(ins.Args))
	}
	out := make([]ir.ValueID, 0, len(ins.Args))
	for _, a := range ins.Args {
		id, err := s.operand(a)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *bodyScope) instr(ins *instrDecl) (ir.ValueID, error) {
	switch ins.Op {
	case "alloca":
		elem, err := ParseType(s.m.Types, ins.Type)
		if err != nil {
			return ir.NoValueID, err
		}
		return s.b.Alloca(elem, ins.Count, ins.Name), nil
	case "icmp", "fcmp":
		parse := ir.ParsePredicate
		if ins.Op == "fcmp" {
			parse = ir.ParseFloatPredicate
		}
		pred, ok := parse(ins.Pred)
		if !ok {
			return ir.NoValueID, fmt.Errorf("unknown predicate %q", ins.Pred)
		}
		a, err := s.args(ins, 2)
		if err != nil {
			return ir.NoValueID, err
		}
		return s.b.Compare(pred, a[0], a[1], ins.Name)
	case "load":
		a, err := s.args(ins, 1)
		if err != nil {
			return ir.NoValueID, err
		}
		return s.b.Load(a[0], ins.Name)
	case "store":
		a, err := s.args(ins, 2)
		if err != nil {
			return ir.NoValueID, err
		}
		return s.b.Store(a[0], a[1])
	case "insertvalue":
		a, err := s.args(ins, 2)
		if err != nil {
			return ir.NoValueID, err
		}
		return s.b.InsertValue(a[0], a[1], ins.Name, ins.Indices...)
	case "extractvalue":
		a, err := s.args(ins, 1)
		if err != nil {
			return ir.NoValueID, err
		}
		return s.b.ExtractValue(a[0], ins.Name, ins.Indices...)
	case "getelementptr", "gep":
		a, err := s.args(ins, -1)
		if err != nil {
			return ir.NoValueID, err
		}
		if len(a) == 0 {
			return ir.NoValueID, fmt.Errorf("missing base pointer")
		}
		return s.b.GEP(a[0], ins.Name, a[1:]...)
	case "select":
		a, err := s.args(ins, 3)
		if err != nil {
			return ir.NoValueID, err
		}
		return s.b.Select(a[0], a[1], a[2], ins.Name)
	case "call":
		callee := s.m.FuncByName(strings.TrimPrefix(ins.Callee, "@"))
		if callee == nil {
			return ir.NoValueID, fmt.Errorf("unknown callee %q", ins.Callee)
		}
		a, err := s.args(ins, -1)
		if err != nil {
			return ir.NoValueID, err
		}
		return s.b.Call(callee, ins.Name, a...)
	case "ret":
		a, err := s.args(ins, -1)
		if err != nil {
			return ir.NoValueID, err
		}
		switch len(a) {
		case 0:
			return s.b.ReturnVoid(), nil
		case 1:
			return s.b.Return(a[0])
		default:
			return ir.NoValueID, fmt.Errorf("ret takes at most one value")
		}
	}
	if op, ok := ir.ParseBinOp(ins.Op); ok {
		a, err := s.args(ins, 2)
		if err != nil {
			return ir.NoValueID, err
		}
		return s.b.Binary(op, a[0], a[1], ins.Name)
	}
	if op, ok := ir.ParseCastOp(ins.Op); ok {
		to, err := ParseType(s.m.Types, ins.Type)
		if err != nil {
			return ir.NoValueID, err
		}
		a, err := s.args(ins, 1)
		if err != nil {
			return ir.NoValueID, err
		}
		return s.b.Cast(op, a[0], to, ins.Name)
	}
	return ir.NoValueID, fmt.Errorf("unknown op %q", ins.Op)
}

// operand resolves one operand reference.
func (s *bodyScope) operand(ref string) (ir.ValueID, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "true" || ref == "false":
		v := int64(0)
		if ref == "true" {
			v = 1
		}
		return s.m.ConstInt(s.m.Types.Builtins().I1, v), nil
	case strings.HasPrefix(ref, "%"):
		id, ok := s.locals[ref[1:]]
		if !ok {
			return ir.NoValueID, fmt.Errorf("undefined local %s", ref)
		}
		return id, nil
	case strings.HasPrefix(ref, "@"):
		return s.global(ref[1:])
	case strings.HasPrefix(ref, "undef "), strings.HasPrefix(ref, "null "):
		kind, rest, _ := strings.Cut(ref, " ")
		ty, err := ParseType(s.m.Types, rest)
		if err != nil {
			return ir.NoValueID, err
		}
		if kind == "null" {
			if tt, _ := s.m.Types.Lookup(ty); tt.Kind != types.KindPointer {
				return ir.NoValueID, fmt.Errorf("null needs a pointer type, got %s", rest)
			}
			return s.m.Null(ty), nil
		}
		return s.m.Undef(ty), nil
	}
	cut := strings.LastIndexByte(ref, ' ')
	if cut < 0 {
		return ir.NoValueID, fmt.Errorf("bad operand %q", ref)
	}
	ty, err := ParseType(s.m.Types, ref[:cut])
	if err != nil {
		return ir.NoValueID, err
	}
	return s.literal(ty, ref[cut+1:])
}

func (s *bodyScope) global(name string) (ir.ValueID, error) {
	for _, id := range s.m.Globals {
		if s.m.Value(id).Name == name {
			return id, nil
		}
	}
	if f := s.m.FuncByName(name); f != nil {
		return f.Value, nil
	}
	return ir.NoValueID, fmt.Errorf("undefined global @%s", name)
}

func (s *bodyScope) literal(ty types.TypeID, text string) (ir.ValueID, error) {
	tt, _ := s.m.Types.Lookup(ty)
	switch tt.Kind {
	case types.KindInt:
		v, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return ir.NoValueID, fmt.Errorf("bad integer %q", text)
		}
		return s.m.ConstInt(ty, v), nil
	case types.KindFloat:
		switch text {
		case "nan":
			return s.m.ConstFloat(ty, math.NaN()), nil
		case "inf":
			return s.m.ConstFloat(ty, math.Inf(1)), nil
		case "-inf":
			return s.m.ConstFloat(ty, math.Inf(-1)), nil
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return ir.NoValueID, fmt.Errorf("bad float %q", text)
		}
		return s.m.ConstFloat(ty, v), nil
	default:
		return ir.NoValueID, fmt.Errorf("no literals of type %s", ir.TypeString(s.m.Types, ty))
	}
}
