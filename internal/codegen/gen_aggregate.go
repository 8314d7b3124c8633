package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"clgen/internal/ir"
	"clgen/internal/typefmt"
	"clgen/internal/types"
)

// accessPath renders the member path for indices into an aggregate of type
// agg: ".f<i>" for struct fields, "[i]" for array elements, ".s<i>" for
// vector lanes.
func (g *Generator) accessPath(agg types.TypeID, indices []uint32) (string, error) {
	var sb strings.Builder
	cur := agg
	for _, idx := range indices {
		tt, ok := g.fc.Module.Types.Lookup(cur)
		if !ok {
			return "", fmt.Errorf("unknown type %d", cur)
		}
		switch tt.Kind {
		case types.KindStruct:
			info, _ := g.fc.Module.Types.StructInfo(cur)
			if int(idx) >= len(info.Fields) {
				return "", fmt.Errorf("field %d out of range for %s", idx, info.Name)
			}
			sb.WriteString("." + typefmt.FieldName(int(idx)))
			cur = info.Fields[idx]
		case types.KindArray:
			sb.WriteString("[" + strconv.FormatUint(uint64(idx), 10) + "]")
			cur = tt.Elem
		case types.KindVector:
			sb.WriteString(".s" + strconv.FormatUint(uint64(idx), 16))
			cur = tt.Elem
		default:
			return "", fmt.Errorf("%w: index into %s", ErrUnhandledInstruction, tt.Kind)
		}
	}
	return sb.String(), nil
}

// baseExpr reports the aggregate's existing expression. The undefined
// sentinel, and any value generated without one, report ok=false. Other
// constants are not storage and cannot be inserted into.
func (g *Generator) baseExpr(id ir.ValueID) (string, bool, error) {
	v := g.fc.Module.Value(id)
	if v == nil {
		return "", false, errUnknownValue(id)
	}
	switch v.Kind {
	case ir.ValueUndef:
		return "", false, nil
	case ir.ValueArg, ir.ValueInstr:
		info, ok := g.fc.Ledger.Lookup(id)
		if !ok {
			return "", false, fmt.Errorf("%w: aggregate %d has not been generated", ErrNoExpression, id)
		}
		if !info.HasExpr() {
			return "", false, nil
		}
		return info.expr, true, nil
	default:
		return "", false, fmt.Errorf("%w: insertvalue into %s constant %d", ErrUnhandledInstruction, v.Kind, id)
	}
}

// genInsertValue writes into an existing aggregate in place when the base
// already has an expression. Otherwise it introduces fresh storage named
// after the value.
func (g *Generator) genInsertValue(info *ValueInfo, ins *ir.InsertValueInstr) error {
	aggType := g.fc.Module.Value(ins.Agg).Type
	path, err := g.accessPath(aggType, ins.Indices)
	if err != nil {
		return fmt.Errorf("insertvalue %s: %w", info.Name, err)
	}
	val, err := g.operand(ins.Value)
	if err != nil {
		return fmt.Errorf("insertvalue %s: %w", info.Name, err)
	}
	base, ok, err := g.baseExpr(ins.Agg)
	if err != nil {
		return fmt.Errorf("insertvalue %s: %w", info.Name, err)
	}
	if ok {
		if err := info.SetExpression(base); err != nil {
			return err
		}
		info.setInline(paren(base) + path + " = " + val + ";")
		return nil
	}

	decl := declaration{kind: declValue, typ: aggType}
	if tt, _ := g.fc.Module.Types.Lookup(aggType); tt.Kind == types.KindStruct {
		layout, err := g.fc.Types.Layout(aggType)
		if err != nil {
			return fmt.Errorf("insertvalue %s: %w", info.Name, err)
		}
		decl = declaration{kind: declStruct, typ: aggType, layout: layout}
	}
	if err := info.SetExpression(info.Name); err != nil {
		return err
	}
	info.decl = decl
	g.fc.useType(aggType)
	info.setInline(info.Name + path + " = " + val + ";")
	return nil
}

func (g *Generator) genExtractValue(info *ValueInfo, ins *ir.ExtractValueInstr) error {
	agg, err := g.embedded(ins.Agg)
	if err != nil {
		return fmt.Errorf("extractvalue %s: %w", info.Name, err)
	}
	path, err := g.accessPath(g.fc.Module.Value(ins.Agg).Type, ins.Indices)
	if err != nil {
		return fmt.Errorf("extractvalue %s: %w", info.Name, err)
	}
	return info.SetExpression(agg + path)
}
