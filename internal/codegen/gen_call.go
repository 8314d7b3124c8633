package codegen

import (
	"fmt"
	"strings"

	"clgen/internal/ir"
	"clgen/internal/names"
)

// callee resolves the emitted name for a call target and records the
// dependency it creates.
func (g *Generator) callee(f *ir.Func) (string, int, error) {
	if !f.External {
		name, err := g.fc.Names.Global.GetOrCreate(f.Value, f.Name)
		if err != nil {
			return "", 0, err
		}
		g.fc.Deps.AddFunction(f.ID)
		return name, 0, nil
	}
	if target, ok := g.fc.Calls.Resolve(f.Name); ok {
		if target.Shim {
			g.fc.Deps.AddShim(target.Name)
		}
		return target.Name, target.Args, nil
	}
	name := names.Sanitize(f.Name)
	g.fc.Deps.AddShim(name)
	return name, 0, nil
}

func (g *Generator) genCall(info *ValueInfo, ins *ir.CallInstr) error {
	cv := g.fc.Module.Value(ins.Callee)
	if cv == nil || cv.Kind != ir.ValueFunc {
		return fmt.Errorf("%w: indirect call %s", ErrUnhandledInstruction, info.Name)
	}
	f := g.fc.Module.Func(cv.Func)
	if f == nil {
		return fmt.Errorf("call %s: unknown function %d", info.Name, cv.Func)
	}

	args := make([]string, 0, len(ins.Args))
	for _, id := range ins.Args {
		text, err := g.operand(id)
		if err != nil {
			return fmt.Errorf("call %s: %w", f.Name, err)
		}
		args = append(args, text)
	}
	name, keep, err := g.callee(f)
	if err != nil {
		return fmt.Errorf("call %s: %w", f.Name, err)
	}
	if keep > 0 && keep < len(args) {
		args = args[:keep]
	}
	call := name + "(" + strings.Join(args, ", ") + ")"

	if g.fc.Module.Types.IsVoid(info.Value.Type) {
		info.setInline(call + ";")
		return nil
	}
	if err := info.SetExpression(info.Name); err != nil {
		return err
	}
	info.decl = declaration{kind: declValue, typ: info.Value.Type}
	g.fc.useType(info.Value.Type)
	info.setInline(info.Name + " = " + call + ";")
	return nil
}

func (g *Generator) genReturn(info *ValueInfo, ins *ir.ReturnInstr) error {
	if !ins.HasValue {
		info.setInline("return;")
		return nil
	}
	val, err := g.operand(ins.Value)
	if err != nil {
		return fmt.Errorf("ret: %w", err)
	}
	info.setInline("return " + val + ";")
	return nil
}
