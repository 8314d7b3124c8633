package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"clgen/internal/ir"
	"clgen/internal/types"
)

type harness struct {
	m   *ir.Module
	bt  types.Builtins
	b   *ir.Builder
	fc  *FuncContext
	gen *Generator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	m := ir.NewModule("test")
	bt := m.Types.Builtins()
	f, err := m.NewFunc("block", m.Types.Func(bt.Void, nil))
	if err != nil {
		t.Fatalf("NewFunc: %v", err)
	}
	fc := NewFuncContext(m, f, nil, nil)
	return &harness{m: m, bt: bt, b: ir.NewBuilder(m, f), fc: fc, gen: NewGenerator(fc)}
}

// must unwraps a builder result: h.must(t)(h.b.Load(p, "")).
func (h *harness) must(t *testing.T) func(ir.ValueID, error) ir.ValueID {
	return func(id ir.ValueID, err error) ir.ValueID {
		t.Helper()
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		return id
	}
}

// info creates the ValueInfo for id with an optional requested name.
func (h *harness) info(t *testing.T, id ir.ValueID, hint string) *ValueInfo {
	t.Helper()
	info, err := h.fc.Ledger.GetOrCreate(h.fc.Names.Local, h.m.Value(id), hint)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	return info
}

// named creates an info whose expression is its own name.
func (h *harness) named(t *testing.T, id ir.ValueID, hint string) *ValueInfo {
	t.Helper()
	info := h.info(t, id, hint)
	if err := info.SetExpression(info.Name); err != nil {
		t.Fatalf("SetExpression: %v", err)
	}
	return info
}

func (h *harness) run(t *testing.T, info *ValueInfo) {
	t.Helper()
	if err := h.gen.Run(info); err != nil {
		t.Fatalf("Run(%s): %v", info.Name, err)
	}
}

func (h *harness) decl(t *testing.T, info *ValueInfo) string {
	t.Helper()
	var sb strings.Builder
	if err := info.WriteDeclaration(&sb, "    ", h.fc.Types); err != nil {
		t.Fatalf("WriteDeclaration: %v", err)
	}
	return sb.String()
}

func (h *harness) inline(t *testing.T, info *ValueInfo) string {
	t.Helper()
	var sb strings.Builder
	if err := info.WriteInlineCl(&sb, "    "); err != nil {
		t.Fatalf("WriteInlineCl: %v", err)
	}
	return sb.String()
}

func (h *harness) expr(t *testing.T, info *ValueInfo) string {
	t.Helper()
	text, err := info.Expr()
	if err != nil {
		t.Fatalf("Expr(%s): %v", info.Name, err)
	}
	return text
}

func (h *harness) mystruct() types.TypeID {
	return h.m.Types.RegisterStruct("struct.mystruct", []types.TypeID{h.bt.I32, h.bt.I32})
}

func TestAdd(t *testing.T) {
	h := newHarness(t)
	a := h.b.Alloca(h.bt.I32, 1, "")
	b := h.b.Alloca(h.bt.I32, 1, "")
	aLoad := h.must(t)(h.b.Load(a, ""))
	bLoad := h.must(t)(h.b.Load(b, ""))
	h.named(t, aLoad, "v_a")
	h.named(t, bLoad, "v_b")

	add := h.info(t, h.must(t)(h.b.Add(aLoad, bLoad, "")), "")
	h.run(t, add)

	if got := h.expr(t, add); got != "v_a + v_b" {
		t.Fatalf("expr = %q, want %q", got, "v_a + v_b")
	}
	for _, phase := range []string{"before", "after"} {
		if got := h.decl(t, add); got != "" {
			t.Fatalf("%s assignment: declaration = %q, want empty", phase, got)
		}
		if got := h.inline(t, add); got != "" {
			t.Fatalf("%s assignment: inline = %q, want empty", phase, got)
		}
		add.SetAsAssigned()
	}
	if add.ToBeDeclared() || len(h.fc.Allocas) != 0 {
		t.Fatalf("add must not declare anything")
	}
}

func TestAlloca(t *testing.T) {
	h := newHarness(t)
	a := h.info(t, h.b.Alloca(h.bt.I32, 1, ""), "")
	h.run(t, a)

	if got := h.expr(t, a); got != "v1" {
		t.Fatalf("expr = %q, want v1", got)
	}
	for _, phase := range []string{"before", "after"} {
		if got := h.decl(t, a); got != "    int v1[1];\n" {
			t.Fatalf("%s assignment: declaration = %q", phase, got)
		}
		if got := h.inline(t, a); got != "" {
			t.Fatalf("%s assignment: inline = %q, want empty", phase, got)
		}
		a.SetAsAssigned()
	}
	if got := h.expr(t, a); got != "v1" {
		t.Fatalf("expr after assignment = %q", got)
	}
	want := []AllocaRecord{{Name: "v1", Elem: h.bt.I32, Count: 1}}
	if diff := cmp.Diff(want, h.fc.Allocas); diff != "" {
		t.Fatalf("allocas mismatch (-want +got):\n%s", diff)
	}
}

func TestStore(t *testing.T) {
	h := newHarness(t)
	a := h.b.Alloca(h.bt.I32, 1, "")
	b := h.b.Alloca(h.bt.I32, 1, "")
	aLoad := h.must(t)(h.b.Load(a, ""))
	h.named(t, aLoad, "aLoad")
	h.named(t, b, "b")

	store := h.info(t, h.must(t)(h.b.Store(aLoad, b)), "")
	h.run(t, store)

	for _, phase := range []string{"before", "after"} {
		if store.HasExpr() {
			t.Fatalf("%s assignment: store must have no expression", phase)
		}
		if got := h.decl(t, store); got != "" {
			t.Fatalf("%s assignment: declaration = %q", phase, got)
		}
		if got := h.inline(t, store); got != "    b[0] = aLoad;\n" {
			t.Fatalf("%s assignment: inline = %q", phase, got)
		}
		store.SetAsAssigned()
	}
	if _, err := store.Expr(); !errors.Is(err, ErrNoExpression) {
		t.Fatalf("Expr on store: got %v, want ErrNoExpression", err)
	}
}

func TestInsertValueIntoExpressedBase(t *testing.T) {
	h := newHarness(t)
	st := h.mystruct()
	aAlloca := h.b.Alloca(st, 1, "")
	aLoad := h.must(t)(h.b.Load(aAlloca, ""))
	intAlloca := h.b.Alloca(h.bt.I32, 1, "")
	intLoad := h.must(t)(h.b.Load(intAlloca, ""))
	insertID := h.must(t)(h.b.InsertValue(aLoad, intLoad, "", 1))

	h.named(t, aLoad, "aLoad")
	h.named(t, intLoad, "intLoad")
	insert := h.info(t, insertID, "")
	h.run(t, insert)

	for _, phase := range []string{"before", "after"} {
		if !insert.HasExpr() || h.expr(t, insert) != "aLoad" {
			t.Fatalf("%s assignment: expr should be the base's", phase)
		}
		if got := h.decl(t, insert); got != "" {
			t.Fatalf("%s assignment: declaration = %q", phase, got)
		}
		if got := h.inline(t, insert); got != "    aLoad.f1 = intLoad;\n" {
			t.Fatalf("%s assignment: inline = %q", phase, got)
		}
		insert.SetAsAssigned()
	}
	if insert.ToBeDeclared() {
		t.Fatalf("in-place insert must not be declared")
	}
}

func TestInsertValueFromUndef(t *testing.T) {
	for _, field := range []uint32{0, 1} {
		h := newHarness(t)
		st := h.mystruct()
		intAlloca := h.b.Alloca(h.bt.I32, 1, "")
		intLoad := h.must(t)(h.b.Load(intAlloca, ""))
		h.named(t, intLoad, "intLoad")

		insert := h.info(t, h.must(t)(h.b.InsertValue(h.m.Undef(st), intLoad, "", field)), "")
		h.run(t, insert)

		if got := h.expr(t, insert); got != "v1" {
			t.Fatalf("f%d: expr = %q, want v1", field, got)
		}
		if got := h.decl(t, insert); got != "    struct mystruct v1;\n" {
			t.Fatalf("f%d: declaration = %q", field, got)
		}
		want := "    v1.f" + string(rune('0'+field)) + " = intLoad;\n"
		if got := h.inline(t, insert); got != want {
			t.Fatalf("f%d: inline = %q, want %q", field, got, want)
		}
		insert.SetAsAssigned()
		if !insert.ToBeDeclared() {
			t.Fatalf("f%d: fresh struct storage must be declared", field)
		}
		if diff := cmp.Diff([]types.TypeID{st}, h.fc.Structs()); diff != "" {
			t.Fatalf("f%d: structs mismatch (-want +got):\n%s", field, diff)
		}
	}
}

func TestInsertValueIntoConstantRejected(t *testing.T) {
	h := newHarness(t)
	st := h.mystruct()
	insert := h.info(t, h.must(t)(h.b.InsertValue(h.m.Null(st), h.m.ConstInt(h.bt.I32, 1), "", 1)), "")
	if err := h.gen.Run(insert); !errors.Is(err, ErrUnhandledInstruction) {
		t.Fatalf("Run = %v, want ErrUnhandledInstruction", err)
	}
	if insert.HasExpr() || insert.ToBeDeclared() {
		t.Fatalf("failed insert must leave the value untouched")
	}
}

func TestSetExpression(t *testing.T) {
	h := newHarness(t)
	info := h.named(t, h.b.Alloca(h.bt.I32, 1, "x"), "x")
	if err := info.SetExpression("x"); err != nil {
		t.Fatalf("same text must be accepted: %v", err)
	}
	if err := info.SetExpression("y"); !errors.Is(err, ErrDuplicateExpression) {
		t.Fatalf("got %v, want ErrDuplicateExpression", err)
	}
	if h.expr(t, info) != "x" {
		t.Fatalf("expression changed after rejected assignment")
	}
}

func TestLedgerOrderAndReuse(t *testing.T) {
	h := newHarness(t)
	a := h.b.Alloca(h.bt.I32, 1, "")
	b := h.b.Alloca(h.bt.I32, 1, "")
	ib := h.info(t, b, "")
	ia := h.info(t, a, "first")
	if again := h.info(t, b, "ignored"); again != ib {
		t.Fatalf("GetOrCreate must return the existing entry")
	}
	got := []string{}
	for _, info := range h.fc.Ledger.Infos() {
		got = append(got, info.Name)
	}
	if diff := cmp.Diff([]string{"v1", "first"}, got); diff != "" {
		t.Fatalf("ledger order (-want +got):\n%s", diff)
	}
	if ia.Name != "first" || h.fc.Ledger.Len() != 2 {
		t.Fatalf("unexpected ledger state")
	}
}
