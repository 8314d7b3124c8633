package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"clgen/internal/types"
)

// DumpFunc writes an LLVM-flavoured listing of f, one instruction per line.
func DumpFunc(w io.Writer, m *Module, f *Func) error {
	if w == nil || m == nil || f == nil {
		return nil
	}
	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, TypeString(m.Types, m.Values[p].Type)+" "+operandString(m, p))
	}
	keyword := "define"
	if f.External {
		keyword = "declare"
	}
	if _, err := fmt.Fprintf(w, "%s %s @%s(%s)", keyword, TypeString(m.Types, f.Result(m.Types)), f.Name, strings.Join(params, ", ")); err != nil {
		return err
	}
	if f.External {
		_, err := io.WriteString(w, "\n")
		return err
	}
	if _, err := io.WriteString(w, " {\n"); err != nil {
		return err
	}
	for _, id := range f.Body {
		if _, err := fmt.Fprintf(w, "  %s\n", instrString(m, id)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}\n")
	return err
}

func instrString(m *Module, id ValueID) string {
	v := &m.Values[id]
	ins := &v.Instr
	lhs := ""
	if !m.Types.IsVoid(v.Type) {
		lhs = operandString(m, id) + " = "
	}
	switch ins.Op {
	case OpAlloca:
		return fmt.Sprintf("%salloca %s, i32 %d", lhs, TypeString(m.Types, ins.Alloca.Elem), ins.Alloca.Count)
	case OpBinary:
		return fmt.Sprintf("%s%s %s %s, %s", lhs, ins.Binary.Op, TypeString(m.Types, v.Type),
			operandString(m, ins.Binary.Left), operandString(m, ins.Binary.Right))
	case OpCompare:
		op := "icmp"
		if ins.Compare.Pred.Float() {
			op = "fcmp"
		}
		return fmt.Sprintf("%s%s %s %s, %s", lhs, op, ins.Compare.Pred,
			operandString(m, ins.Compare.Left), operandString(m, ins.Compare.Right))
	case OpLoad:
		return fmt.Sprintf("%sload %s, %s", lhs, TypeString(m.Types, v.Type), operandString(m, ins.Load.Ptr))
	case OpStore:
		return fmt.Sprintf("store %s, %s", operandString(m, ins.Store.Value), operandString(m, ins.Store.Ptr))
	case OpInsertValue:
		return fmt.Sprintf("%sinsertvalue %s, %s, %s", lhs, operandString(m, ins.InsertValue.Agg),
			operandString(m, ins.InsertValue.Value), joinIndices(ins.InsertValue.Indices))
	case OpExtractValue:
		return fmt.Sprintf("%sextractvalue %s, %s", lhs, operandString(m, ins.ExtractValue.Agg), joinIndices(ins.ExtractValue.Indices))
	case OpGetElementPtr:
		parts := make([]string, 0, len(ins.GEP.Indices)+1)
		parts = append(parts, operandString(m, ins.GEP.Base))
		for _, idx := range ins.GEP.Indices {
			parts = append(parts, operandString(m, idx))
		}
		return lhs + "getelementptr " + strings.Join(parts, ", ")
	case OpCast:
		return fmt.Sprintf("%s%s %s to %s", lhs, ins.Cast.Op, operandString(m, ins.Cast.Value), TypeString(m.Types, v.Type))
	case OpSelect:
		return fmt.Sprintf("%sselect %s, %s, %s", lhs, operandString(m, ins.Select.Cond),
			operandString(m, ins.Select.Then), operandString(m, ins.Select.Else))
	case OpCall:
		args := make([]string, 0, len(ins.Call.Args))
		for _, a := range ins.Call.Args {
			args = append(args, operandString(m, a))
		}
		return fmt.Sprintf("%scall %s(%s)", lhs, operandString(m, ins.Call.Callee), strings.Join(args, ", "))
	case OpReturn:
		if ins.Return.HasValue {
			return "ret " + operandString(m, ins.Return.Value)
		}
		return "ret void"
	default:
		return fmt.Sprintf("<%s>", ins.Op)
	}
}

func operandString(m *Module, id ValueID) string {
	v := m.Value(id)
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case ValueConstInt:
		return strconv.FormatInt(v.IntValue, 10)
	case ValueConstFloat:
		return strconv.FormatFloat(v.FloatValue, 'g', -1, 64)
	case ValueNull:
		return "null"
	case ValueUndef:
		return "undef"
	case ValueGlobal, ValueFunc:
		return "@" + v.Name
	default:
		if v.Name != "" {
			return "%" + v.Name
		}
		return fmt.Sprintf("%%%d", v.ID)
	}
}

func joinIndices(idx []uint32) string {
	parts := make([]string, len(idx))
	for i, n := range idx {
		parts[i] = strconv.FormatUint(uint64(n), 10)
	}
	return strings.Join(parts, ", ")
}

// TypeString renders a type in LLVM-like notation.
func TypeString(in *types.Interner, id types.TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case types.KindVoid:
		return "void"
	case types.KindInt:
		return fmt.Sprintf("i%d", tt.Width)
	case types.KindFloat:
		switch tt.Width {
		case types.Width16:
			return "half"
		case types.Width64:
			return "double"
		default:
			return "float"
		}
	case types.KindPointer:
		if tt.AddrSpace != types.AddrPrivate {
			return fmt.Sprintf("%s addrspace(%d)*", TypeString(in, tt.Elem), tt.AddrSpace)
		}
		return TypeString(in, tt.Elem) + "*"
	case types.KindArray:
		return fmt.Sprintf("[%d x %s]", tt.Count, TypeString(in, tt.Elem))
	case types.KindVector:
		return fmt.Sprintf("<%d x %s>", tt.Count, TypeString(in, tt.Elem))
	case types.KindStruct:
		if info, ok := in.StructInfo(id); ok {
			return "%" + info.Name
		}
		return "%struct"
	case types.KindFunc:
		info, _ := in.FuncInfo(id)
		if info == nil {
			return "fn"
		}
		params := make([]string, len(info.Params))
		for i, p := range info.Params {
			params[i] = TypeString(in, p)
		}
		return fmt.Sprintf("%s (%s)", TypeString(in, info.Result), strings.Join(params, ", "))
	default:
		return tt.Kind.String()
	}
}
