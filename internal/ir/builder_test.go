package ir

import (
	"strings"
	"testing"

	"clgen/internal/types"
)

func newKernel(t *testing.T, m *Module, params []types.TypeID, names ...string) (*Func, *Builder) {
	t.Helper()
	sig := m.Types.Func(m.Types.Builtins().Void, params)
	f, err := m.NewFunc("mykernel", sig, names...)
	if err != nil {
		t.Fatalf("NewFunc: %v", err)
	}
	f.Kernel = true
	return f, NewBuilder(m, f)
}

func TestBuilderAllocaLoadStore(t *testing.T) {
	m := NewModule("test")
	i32 := m.Types.Builtins().I32
	f, b := newKernel(t, m, nil)

	a := b.Alloca(i32, 0, "a")
	av := m.Value(a)
	if av.Instr.Alloca.Count != 1 {
		t.Fatalf("alloca count 0 should become 1, got %d", av.Instr.Alloca.Count)
	}
	elem, ok := m.Types.Elem(av.Type)
	if !ok || elem != i32 {
		t.Fatalf("alloca should yield a pointer to i32")
	}
	ld, err := b.Load(a, "aLoad")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Value(ld).Type != i32 {
		t.Fatalf("load type mismatch")
	}
	if _, err := b.Load(ld, ""); err == nil {
		t.Fatalf("expected error loading from a non-pointer")
	}
	if _, err := b.Store(ld, a); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if len(f.Body) != 3 {
		t.Fatalf("body length = %d, want 3", len(f.Body))
	}
}

func TestBuilderInsertExtract(t *testing.T) {
	m := NewModule("test")
	i32 := m.Types.Builtins().I32
	f32 := m.Types.Builtins().F32
	st := m.Types.RegisterStruct("struct.pair", []types.TypeID{i32, f32})
	_, b := newKernel(t, m, nil)

	one := m.ConstInt(i32, 1)
	ins, err := b.InsertValue(m.Undef(st), one, "", 0)
	if err != nil {
		t.Fatalf("InsertValue: %v", err)
	}
	if m.Value(ins).Type != st {
		t.Fatalf("insertvalue must keep the aggregate type")
	}
	ex, err := b.ExtractValue(ins, "", 1)
	if err != nil {
		t.Fatalf("ExtractValue: %v", err)
	}
	if m.Value(ex).Type != f32 {
		t.Fatalf("extractvalue field 1 should be f32")
	}
	if _, err := b.ExtractValue(ins, "", 2); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestBuilderGEP(t *testing.T) {
	m := NewModule("test")
	in := m.Types
	i32 := in.Builtins().I32
	f32 := in.Builtins().F32
	st := in.RegisterStruct("struct.s", []types.TypeID{i32, in.Array(f32, 4)})
	_, b := newKernel(t, m, []types.TypeID{in.Pointer(st, types.AddrGlobal)}, "p")
	p := b.Func().Params[0]

	gep, err := b.GEP(p, "", m.ConstInt(i32, 0), m.ConstInt(i32, 1), m.ConstInt(i32, 2))
	if err != nil {
		t.Fatalf("GEP: %v", err)
	}
	want := in.Pointer(f32, types.AddrGlobal)
	if m.Value(gep).Type != want {
		t.Fatalf("gep result type = %s, want %s", TypeString(in, m.Value(gep).Type), TypeString(in, want))
	}
	n := b.Alloca(i32, 1, "n")
	idx, _ := b.Load(n, "")
	if _, err := b.GEP(p, "", m.ConstInt(i32, 0), idx); err == nil {
		t.Fatalf("expected error for non-constant struct index")
	}
}

func TestBuilderCallChecksArity(t *testing.T) {
	m := NewModule("test")
	f32 := m.Types.Builtins().F32
	sqrt, err := m.DeclareFunc("llvm.sqrt.f32", m.Types.Func(f32, []types.TypeID{f32}))
	if err != nil {
		t.Fatalf("DeclareFunc: %v", err)
	}
	if again, _ := m.DeclareFunc("llvm.sqrt.f32", sqrt.Sig); again != sqrt {
		t.Fatalf("redeclaring with the same signature should return the existing function")
	}
	_, b := newKernel(t, m, nil)
	if _, err := b.Call(sqrt, ""); err == nil {
		t.Fatalf("expected arity error")
	}
	c, err := b.Call(sqrt, "r", m.ConstFloat(f32, 2))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if m.Value(c).Type != f32 {
		t.Fatalf("call result type should come from the callee signature")
	}
}

func TestValidateRejectsUseBeforeDefinition(t *testing.T) {
	m := NewModule("test")
	i32 := m.Types.Builtins().I32
	f, b := newKernel(t, m, nil)
	a := b.Alloca(i32, 1, "a")
	ld, _ := b.Load(a, "")
	if err := Validate(m); err != nil {
		t.Fatalf("valid module rejected: %v", err)
	}
	// swap so the load precedes its pointer
	f.Body[0], f.Body[1] = f.Body[1], f.Body[0]
	_ = ld
	err := Validate(m)
	if err == nil || !strings.Contains(err.Error(), "used before definition") {
		t.Fatalf("expected use-before-definition error, got %v", err)
	}
}

func TestDumpFunc(t *testing.T) {
	m := NewModule("test")
	in := m.Types
	i32 := in.Builtins().I32
	f, b := newKernel(t, m, []types.TypeID{in.Pointer(i32, types.AddrGlobal)}, "out")
	x := b.Alloca(i32, 1, "x")
	v, _ := b.Load(x, "xv")
	sum, _ := b.Add(v, m.ConstInt(i32, 3), "sum")
	_, _ = b.Store(sum, f.Params[0])
	b.ReturnVoid()

	var sb strings.Builder
	if err := DumpFunc(&sb, m, f); err != nil {
		t.Fatalf("DumpFunc: %v", err)
	}
	want := "define void @mykernel(i32 addrspace(1)* %out) {\n" +
		"  %x = alloca i32, i32 1\n" +
		"  %xv = load i32, %x\n" +
		"  %sum = add i32 %xv, 3\n" +
		"  store %sum, %out\n" +
		"  ret void\n" +
		"}\n"
	if got := sb.String(); got != want {
		t.Fatalf("unexpected dump:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestPredicateMnemonics(t *testing.T) {
	ip, ok := ParsePredicate("ult")
	if !ok || ip != PredULT || !ip.Unsigned() || ip.Float() {
		t.Fatalf("icmp ult = %v, %v", ip, ok)
	}
	fp, ok := ParseFloatPredicate("ult")
	if !ok || fp != PredFULT || fp.Unsigned() || !fp.Float() {
		t.Fatalf("fcmp ult = %v, %v", fp, ok)
	}
	if fp.String() != "ult" {
		t.Fatalf("fcmp ult prints %q", fp)
	}
	if _, ok := ParsePredicate("uno"); ok {
		t.Fatalf("uno is not an icmp predicate")
	}
	if _, ok := ParseFloatPredicate("sgt"); ok {
		t.Fatalf("sgt is not an fcmp predicate")
	}
}
