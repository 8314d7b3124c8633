// Package typefmt renders IR types as OpenCL C declaration syntax.
package typefmt

import (
	"fmt"
	"strconv"
	"strings"

	"clgen/internal/names"
	"clgen/internal/types"
)

// Field is one positional struct member.
type Field struct {
	Name string
	Type types.TypeID
}

// StructLayout is the C view of a struct type.
type StructLayout struct {
	Type   types.TypeID
	Name   string
	Fields []Field
}

// Formatter renders types from one interner. It is not safe for
// concurrent use.
type Formatter struct {
	types *types.Interner
	tags  map[types.TypeID]string
	// tagged is how many structs tags covers.
	tagged int
}

// New returns a formatter over typesIn.
func New(typesIn *types.Interner) *Formatter {
	return &Formatter{types: typesIn}
}

// Types exposes the underlying interner.
func (f *Formatter) Types() *types.Interner { return f.types }

// FieldName is the positional member name for index i.
func FieldName(i int) string {
	return "f" + strconv.Itoa(i)
}

// CType renders id as an abstract C type, e.g. "int", "global float*".
func (f *Formatter) CType(id types.TypeID) (string, error) {
	return f.declarator(id, "", "")
}

// UnsignedCType is CType with integer types swapped for their unsigned
// counterparts. Non-integer types render as CType.
func (f *Formatter) UnsignedCType(id types.TypeID) (string, error) {
	tt, ok := f.types.Lookup(id)
	if !ok {
		return "", fmt.Errorf("unknown type id %d", id)
	}
	switch tt.Kind {
	case types.KindInt:
		return unsignedIntName(tt.Width), nil
	case types.KindVector:
		et, ok := f.types.Lookup(tt.Elem)
		if ok && et.Kind == types.KindInt {
			return unsignedIntName(et.Width) + strconv.FormatUint(uint64(tt.Count), 10), nil
		}
	}
	return f.CType(id)
}

// FormatDeclaration renders "<ctype> <name>;" with array suffixes.
func (f *Formatter) FormatDeclaration(id types.TypeID, name string) (string, error) {
	d, err := f.declarator(id, name, "")
	if err != nil {
		return "", err
	}
	return d + ";", nil
}

// FormatArrayDeclaration renders a stack slot: "<ctype> <name>[<count>];".
// Every slot is an array, scalars included, so address-of, load and store
// map onto array decay.
func (f *Formatter) FormatArrayDeclaration(elem types.TypeID, count uint32, name string) (string, error) {
	if count == 0 {
		count = 1
	}
	inner := name + "[" + strconv.FormatUint(uint64(count), 10) + "]"
	d, err := f.declarator(elem, inner, "")
	if err != nil {
		return "", err
	}
	return d + ";", nil
}

// FormatGlobalDeclaration renders a program-scope variable whose value is
// a pointer of type ptr: "<space> <elem> <name>;".
func (f *Formatter) FormatGlobalDeclaration(ptr types.TypeID, name string) (string, error) {
	tt, ok := f.types.Lookup(ptr)
	if !ok || tt.Kind != types.KindPointer {
		return "", fmt.Errorf("global %s: type %d is not a pointer", name, ptr)
	}
	d, err := f.declarator(tt.Elem, name, addrQualifier(tt.AddrSpace))
	if err != nil {
		return "", err
	}
	return d + ";", nil
}

// FormatStructDeclaration renders "struct <structname> <name>;".
func (f *Formatter) FormatStructDeclaration(layout StructLayout, name string) string {
	return "struct " + layout.Name + " " + name + ";"
}

// FormatStructDefinition renders the full struct body.
func (f *Formatter) FormatStructDefinition(layout StructLayout, indent string) (string, error) {
	var sb strings.Builder
	sb.WriteString("struct ")
	sb.WriteString(layout.Name)
	sb.WriteString(" {\n")
	for _, field := range layout.Fields {
		d, err := f.FormatDeclaration(field.Type, field.Name)
		if err != nil {
			return "", fmt.Errorf("struct %s field %s: %w", layout.Name, field.Name, err)
		}
		sb.WriteString(indent)
		sb.WriteString(d)
		sb.WriteString("\n")
	}
	sb.WriteString("};\n")
	return sb.String(), nil
}

// StructName derives the C tag for a struct type: the declared name with
// any "struct."/"class."/"union." prefix dropped, sanitized. When two
// structs end up with the same tag, the later registered one gets a "_<n>"
// suffix, so every Formatter over the same interner agrees.
func (f *Formatter) StructName(id types.TypeID) (string, error) {
	if _, ok := f.types.StructInfo(id); !ok {
		return "", fmt.Errorf("type %d is not a struct", id)
	}
	if f.tags == nil || f.types.NumStructs() != f.tagged {
		f.assignTags(f.types.Structs())
	}
	return f.tags[id], nil
}

func (f *Formatter) assignTags(ids []types.TypeID) {
	f.tags = make(map[types.TypeID]string, len(ids))
	used := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		info, _ := f.types.StructInfo(id)
		base := baseTag(id, info.Name)
		tag := base
		for n := 2; ; n++ {
			if _, taken := used[tag]; !taken {
				break
			}
			tag = base + "_" + strconv.Itoa(n)
		}
		used[tag] = struct{}{}
		f.tags[id] = tag
	}
	f.tagged = len(ids)
}

func baseTag(id types.TypeID, declared string) string {
	name := declared
	for _, prefix := range []string{"struct.", "class.", "union."} {
		if strings.HasPrefix(name, prefix) {
			name = name[len(prefix):]
			break
		}
	}
	if name == "" {
		return "anon" + strconv.FormatUint(uint64(id), 10)
	}
	return names.Sanitize(name)
}

// Layout returns the positional layout of a struct type.
func (f *Formatter) Layout(id types.TypeID) (StructLayout, error) {
	info, ok := f.types.StructInfo(id)
	if !ok {
		return StructLayout{}, fmt.Errorf("type %d is not a struct", id)
	}
	name, err := f.StructName(id)
	if err != nil {
		return StructLayout{}, err
	}
	layout := StructLayout{Type: id, Name: name, Fields: make([]Field, len(info.Fields))}
	for i, ft := range info.Fields {
		layout.Fields[i] = Field{Name: FieldName(i), Type: ft}
	}
	return layout, nil
}

// declarator builds a C declarator for id around inner, which is a name,
// an abstract declarator, or empty. qual is the address space qualifier of
// the base type, filled in by the innermost pointer.
func (f *Formatter) declarator(id types.TypeID, inner, qual string) (string, error) {
	tt, ok := f.types.Lookup(id)
	if !ok {
		return "", fmt.Errorf("unknown type id %d", id)
	}
	switch tt.Kind {
	case types.KindArray:
		return f.declarator(tt.Elem, inner+"["+strconv.FormatUint(uint64(tt.Count), 10)+"]", qual)
	case types.KindPointer:
		ek, _ := f.types.Lookup(tt.Elem)
		switch {
		case ek.Kind == types.KindArray:
			inner = "(*" + inner + ")"
		case inner == "":
			inner = "*"
		case strings.HasPrefix(inner, "*"):
			inner = "*" + inner
		default:
			inner = "* " + inner
		}
		return f.declarator(tt.Elem, inner, addrQualifier(tt.AddrSpace))
	}
	base, err := f.baseName(id, tt)
	if err != nil {
		return "", err
	}
	if qual != "" {
		base = qual + " " + base
	}
	switch {
	case inner == "":
		return base, nil
	case strings.HasPrefix(inner, "*"):
		return base + inner, nil
	default:
		return base + " " + inner, nil
	}
}

func (f *Formatter) baseName(id types.TypeID, tt types.Type) (string, error) {
	switch tt.Kind {
	case types.KindVoid:
		return "void", nil
	case types.KindInt:
		return intName(tt.Width), nil
	case types.KindFloat:
		return floatName(tt.Width), nil
	case types.KindVector:
		et, ok := f.types.Lookup(tt.Elem)
		if !ok || (et.Kind != types.KindInt && et.Kind != types.KindFloat) {
			return "", fmt.Errorf("unsupported vector element type %d", tt.Elem)
		}
		elem, err := f.baseName(tt.Elem, et)
		if err != nil {
			return "", err
		}
		return elem + strconv.FormatUint(uint64(tt.Count), 10), nil
	case types.KindStruct:
		name, err := f.StructName(id)
		if err != nil {
			return "", err
		}
		return "struct " + name, nil
	default:
		return "", fmt.Errorf("unsupported type kind %s", tt.Kind)
	}
}

func intName(width types.Width) string {
	switch width {
	case types.Width1:
		return "bool"
	case types.Width8:
		return "char"
	case types.Width16:
		return "short"
	case types.Width32:
		return "int"
	default:
		return "long"
	}
}

func unsignedIntName(width types.Width) string {
	switch width {
	case types.Width1:
		return "bool"
	case types.Width8:
		return "uchar"
	case types.Width16:
		return "ushort"
	case types.Width32:
		return "uint"
	default:
		return "ulong"
	}
}

func floatName(width types.Width) string {
	switch width {
	case types.Width16:
		return "half"
	case types.Width64:
		return "double"
	default:
		return "float"
	}
}

func addrQualifier(space types.AddrSpace) string {
	switch space {
	case types.AddrGlobal:
		return "global"
	case types.AddrLocal:
		return "local"
	case types.AddrConstant:
		return "constant"
	default:
		return ""
	}
}
