package typefmt

import (
	"testing"

	"clgen/internal/types"
)

func TestCType(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	st := in.RegisterStruct("struct.mystruct", []types.TypeID{b.I32, b.I32})
	f := New(in)

	tests := []struct {
		name string
		id   types.TypeID
		want string
	}{
		{"bool", b.I1, "bool"},
		{"char", b.I8, "char"},
		{"short", b.I16, "short"},
		{"int", b.I32, "int"},
		{"long", b.I64, "long"},
		{"half", b.F16, "half"},
		{"float", b.F32, "float"},
		{"double", b.F64, "double"},
		{"void", b.Void, "void"},
		{"float4", in.Vector(b.F32, 4), "float4"},
		{"private ptr", in.Pointer(b.I32, types.AddrPrivate), "int*"},
		{"global ptr", in.Pointer(b.F32, types.AddrGlobal), "global float*"},
		{"local ptr", in.Pointer(b.F32, types.AddrLocal), "local float*"},
		{"constant ptr", in.Pointer(b.I8, types.AddrConstant), "constant char*"},
		{"ptr ptr", in.Pointer(in.Pointer(b.I32, types.AddrPrivate), types.AddrPrivate), "int**"},
		{"ptr to array", in.Pointer(in.Array(b.I32, 4), types.AddrPrivate), "int (*)[4]"},
		{"struct", st, "struct mystruct"},
	}
	for _, tt := range tests {
		got, err := f.CType(tt.id)
		if err != nil {
			t.Fatalf("%s: CType error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: CType = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestUnsignedCType(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	f := New(in)
	for id, want := range map[types.TypeID]string{
		b.I8:                "uchar",
		b.I16:               "ushort",
		b.I32:               "uint",
		b.I64:               "ulong",
		in.Vector(b.I32, 2): "uint2",
		b.F32:               "float",
	} {
		got, err := f.UnsignedCType(id)
		if err != nil {
			t.Fatalf("UnsignedCType(%d): %v", id, err)
		}
		if got != want {
			t.Errorf("UnsignedCType(%d) = %q, want %q", id, got, want)
		}
	}
}

func TestFormatDeclarations(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	st := in.RegisterStruct("struct.mystruct", []types.TypeID{b.I32, in.Array(b.F32, 4)})
	f := New(in)

	got, err := f.FormatArrayDeclaration(b.I32, 1, "v1")
	if err != nil || got != "int v1[1];" {
		t.Fatalf("FormatArrayDeclaration = %q, %v", got, err)
	}
	got, err = f.FormatArrayDeclaration(st, 3, "s")
	if err != nil || got != "struct mystruct s[3];" {
		t.Fatalf("FormatArrayDeclaration(struct) = %q, %v", got, err)
	}
	got, err = f.FormatArrayDeclaration(in.Array(b.I32, 4), 1, "arr")
	if err != nil || got != "int arr[1][4];" {
		t.Fatalf("FormatArrayDeclaration(array) = %q, %v", got, err)
	}
	got, err = f.FormatDeclaration(in.Pointer(b.F32, types.AddrGlobal), "p")
	if err != nil || got != "global float* p;" {
		t.Fatalf("FormatDeclaration(ptr) = %q, %v", got, err)
	}
	got, err = f.FormatDeclaration(b.F32, "x")
	if err != nil || got != "float x;" {
		t.Fatalf("FormatDeclaration(scalar) = %q, %v", got, err)
	}

	layout, err := f.Layout(st)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if layout.Name != "mystruct" || len(layout.Fields) != 2 || layout.Fields[1].Name != "f1" {
		t.Fatalf("unexpected layout %+v", layout)
	}
	if got := f.FormatStructDeclaration(layout, "v1"); got != "struct mystruct v1;" {
		t.Fatalf("FormatStructDeclaration = %q", got)
	}
	def, err := f.FormatStructDefinition(layout, "    ")
	if err != nil {
		t.Fatalf("FormatStructDefinition: %v", err)
	}
	wantDef := "struct mystruct {\n    int f0;\n    float f1[4];\n};\n"
	if def != wantDef {
		t.Fatalf("FormatStructDefinition:\nwant %q\ngot  %q", wantDef, def)
	}
}

func TestStructNamePrefixes(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Builtins().I32
	f := New(in)
	for declared, want := range map[string]string{
		"struct.mystruct": "mystruct",
		"class.Foo":       "Foo",
		"union.u":         "u",
		"plain":           "plain",
		"struct.a.b":      "a_b",
	} {
		id := in.RegisterStruct(declared, []types.TypeID{i32})
		got, err := f.StructName(id)
		if err != nil {
			t.Fatalf("StructName(%q): %v", declared, err)
		}
		if got != want {
			t.Errorf("StructName(%q) = %q, want %q", declared, got, want)
		}
	}
	if _, err := f.StructName(i32); err == nil {
		t.Fatalf("StructName on a scalar must fail")
	}
}

func TestStructNameCollisions(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Builtins().I32
	ids := []types.TypeID{
		in.RegisterStruct("struct.a", []types.TypeID{i32}),
		in.RegisterStruct("class.a", []types.TypeID{i32}),
		in.RegisterStruct("union.a", []types.TypeID{i32}),
		in.RegisterStruct("struct.a_2", []types.TypeID{i32}),
	}
	want := []string{"a", "a_2", "a_3", "a_2_2"}

	// Query in reverse so the tags cannot depend on lookup order.
	f := New(in)
	for i := len(ids) - 1; i >= 0; i-- {
		got, err := f.StructName(ids[i])
		if err != nil {
			t.Fatalf("StructName: %v", err)
		}
		if got != want[i] {
			t.Errorf("StructName(#%d) = %q, want %q", i, got, want[i])
		}
	}

	late := in.RegisterStruct("a", []types.TypeID{i32})
	if got, _ := f.StructName(late); got != "a_4" {
		t.Fatalf("late struct tag = %q, want a_4", got)
	}
	if got, _ := New(in).StructName(ids[1]); got != "a_2" {
		t.Fatalf("fresh formatter disagrees: %q", got)
	}
}

func TestUnsupportedKind(t *testing.T) {
	in := types.NewInterner()
	fn := in.Func(in.Builtins().Void, nil)
	if _, err := New(in).CType(fn); err == nil {
		t.Fatalf("function types have no C rendering here")
	}
}

func TestFormatGlobalDeclaration(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	f := New(in)
	got, err := f.FormatGlobalDeclaration(in.Pointer(in.Array(b.F32, 16), types.AddrConstant), "table")
	if err != nil || got != "constant float table[16];" {
		t.Fatalf("FormatGlobalDeclaration = %q, %v", got, err)
	}
	if _, err := f.FormatGlobalDeclaration(b.I32, "x"); err == nil {
		t.Fatalf("expected error for non-pointer global type")
	}
}
