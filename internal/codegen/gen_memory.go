package codegen

import (
	"fmt"
	"strings"

	"clgen/internal/ir"
	"clgen/internal/typefmt"
	"clgen/internal/types"
)

// genAlloca turns a stack slot into a one-or-more element array named after
// the value, so "name[0]" addresses the pointee.
func (g *Generator) genAlloca(info *ValueInfo, ins *ir.AllocaInstr) error {
	count := ins.Count
	if count == 0 {
		count = 1
	}
	if err := info.SetExpression(info.Name); err != nil {
		return err
	}
	info.decl = declaration{kind: declStack, typ: ins.Elem, count: count}
	g.fc.useType(ins.Elem)
	g.fc.Allocas = append(g.fc.Allocas, AllocaRecord{Name: info.Name, Elem: ins.Elem, Count: count})
	return nil
}

// genLoad reuses the pointer's text: storage is already array or pointer
// typed, so no temporary is introduced.
func (g *Generator) genLoad(info *ValueInfo, ins *ir.LoadInstr) error {
	ptr, err := g.operand(ins.Ptr)
	if err != nil {
		return fmt.Errorf("load %s: %w", info.Name, err)
	}
	return info.SetExpression(ptr)
}

func (g *Generator) genStore(info *ValueInfo, ins *ir.StoreInstr) error {
	ptr, err := g.embedded(ins.Ptr)
	if err != nil {
		return fmt.Errorf("store pointer: %w", err)
	}
	val, err := g.operand(ins.Value)
	if err != nil {
		return fmt.Errorf("store value: %w", err)
	}
	info.setInline(ptr + "[0] = " + val + ";")
	return nil
}

func (g *Generator) genGEP(info *ValueInfo, ins *ir.GEPInstr) error {
	if len(ins.Indices) == 0 {
		return fmt.Errorf("%w: getelementptr %s without indices", ErrUnhandledInstruction, info.Name)
	}
	base, err := g.embedded(ins.Base)
	if err != nil {
		return fmt.Errorf("getelementptr base: %w", err)
	}
	baseVal := g.fc.Module.Value(ins.Base)
	cur, ok := g.fc.Module.Types.Elem(baseVal.Type)
	if !ok {
		return fmt.Errorf("%w: getelementptr %s on non-pointer base", ErrUnhandledInstruction, info.Name)
	}

	var sb strings.Builder
	sb.WriteString(base)
	first, err := g.operand(ins.Indices[0])
	if err != nil {
		return fmt.Errorf("getelementptr index: %w", err)
	}
	fmt.Fprintf(&sb, "[%s]", first)

	for _, idx := range ins.Indices[1:] {
		tt, _ := g.fc.Module.Types.Lookup(cur)
		switch tt.Kind {
		case types.KindStruct:
			iv := g.fc.Module.Value(idx)
			if iv == nil || iv.Kind != ir.ValueConstInt {
				return fmt.Errorf("%w: struct step of getelementptr %s needs a constant index", ErrUnhandledInstruction, info.Name)
			}
			sinfo, _ := g.fc.Module.Types.StructInfo(cur)
			if iv.IntValue < 0 || int(iv.IntValue) >= len(sinfo.Fields) {
				return fmt.Errorf("getelementptr %s: field %d out of range", info.Name, iv.IntValue)
			}
			sb.WriteString("." + typefmt.FieldName(int(iv.IntValue)))
			cur = sinfo.Fields[iv.IntValue]
		case types.KindArray, types.KindVector:
			text, err := g.operand(idx)
			if err != nil {
				return fmt.Errorf("getelementptr index: %w", err)
			}
			fmt.Fprintf(&sb, "[%s]", text)
			cur = tt.Elem
		default:
			return fmt.Errorf("%w: getelementptr %s steps into %s", ErrUnhandledInstruction, info.Name, tt.Kind)
		}
	}
	return info.SetExpression("&" + sb.String())
}
