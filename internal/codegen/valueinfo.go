package codegen

import (
	"fmt"
	"io"

	"clgen/internal/ir"
	"clgen/internal/typefmt"
	"clgen/internal/types"
)

type declKind uint8

const (
	declNone declKind = iota
	// declStack is a stack slot: "<T> name[<count>];"
	declStack
	// declStruct is fresh struct storage: "struct <tag> name;"
	declStruct
	// declValue is a plain local: "<T> name;"
	declValue
)

type declaration struct {
	kind   declKind
	typ    types.TypeID
	count  uint32
	layout typefmt.StructLayout
}

// ValueInfo is the generation state of one SSA value.
type ValueInfo struct {
	Value *ir.Value
	Name  string

	expr    string
	hasExpr bool

	inline    string
	hasInline bool

	decl      declaration
	assigned  bool
	generated bool
}

// SetExpression memoizes the value's expression. Setting the same text again
// is a no-op; different text fails with ErrDuplicateExpression.
func (vi *ValueInfo) SetExpression(text string) error {
	if vi.hasExpr {
		if vi.expr == text {
			return nil
		}
		return fmt.Errorf("%w: %s already has %q, refusing %q", ErrDuplicateExpression, vi.Name, vi.expr, text)
	}
	vi.expr = text
	vi.hasExpr = true
	return nil
}

// HasExpr reports whether an expression has been set.
func (vi *ValueInfo) HasExpr() bool { return vi.hasExpr }

// Expr returns the memoized expression.
func (vi *ValueInfo) Expr() (string, error) {
	if !vi.hasExpr {
		return "", fmt.Errorf("%w: %s", ErrNoExpression, vi.Name)
	}
	return vi.expr, nil
}

// SetAsAssigned marks the value as fully materialized. It only gates
// re-generation; it never changes emitted text.
func (vi *ValueInfo) SetAsAssigned() { vi.assigned = true }

// Assigned reports whether SetAsAssigned was called.
func (vi *ValueInfo) Assigned() bool { return vi.assigned }

// ToBeDeclared reports whether a standalone declaration is emitted.
func (vi *ValueInfo) ToBeDeclared() bool { return vi.decl.kind != declNone }

// Generated reports whether the generator already ran for this value.
func (vi *ValueInfo) Generated() bool { return vi.generated }

// InlineCl returns the inline statement, if any.
func (vi *ValueInfo) InlineCl() (string, bool) { return vi.inline, vi.hasInline }

func (vi *ValueInfo) setInline(text string) {
	vi.inline = text
	vi.hasInline = true
}

// WriteDeclaration writes "<indent><declaration>\n", or nothing when the
// value needs no declaration.
func (vi *ValueInfo) WriteDeclaration(w io.Writer, indent string, tf *typefmt.Formatter) error {
	var (
		text string
		err  error
	)
	switch vi.decl.kind {
	case declNone:
		return nil
	case declStack:
		text, err = tf.FormatArrayDeclaration(vi.decl.typ, vi.decl.count, vi.Name)
	case declStruct:
		text = tf.FormatStructDeclaration(vi.decl.layout, vi.Name)
	case declValue:
		text, err = tf.FormatDeclaration(vi.decl.typ, vi.Name)
	}
	if err != nil {
		return fmt.Errorf("declaration of %s: %w", vi.Name, err)
	}
	_, err = fmt.Fprintf(w, "%s%s\n", indent, text)
	return err
}

// WriteInlineCl writes "<indent><statement>\n", or nothing when the value
// produced no statement.
func (vi *ValueInfo) WriteInlineCl(w io.Writer, indent string) error {
	if !vi.hasInline {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s%s\n", indent, vi.inline)
	return err
}
