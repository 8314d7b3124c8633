package ir

import (
	"errors"
	"fmt"
)

// Validate checks module invariants the code generator relies on.
// Returns error if any invariant is violated.
func Validate(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs {
		if f == nil || f.External {
			continue
		}
		if err := ValidateFunc(m, f); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

// ValidateFunc checks that every operand is defined before it is used and
// that instructions belong to f.
func ValidateFunc(m *Module, f *Func) error {
	var errs []error
	defined := make(map[ValueID]struct{}, len(f.Params)+len(f.Body))
	for _, p := range f.Params {
		defined[p] = struct{}{}
	}
	for pos, id := range f.Body {
		v := m.Value(id)
		if v == nil {
			errs = append(errs, fmt.Errorf("body[%d]: unknown value %d", pos, id))
			continue
		}
		if v.Kind != ValueInstr {
			errs = append(errs, fmt.Errorf("body[%d]: value %d is a %s, not an instruction", pos, id, v.Kind))
			continue
		}
		if v.Func != f.ID {
			errs = append(errs, fmt.Errorf("body[%d]: instruction %d belongs to function %d", pos, id, v.Func))
		}
		for _, op := range v.Instr.Operands() {
			if err := checkOperand(m, f, defined, op); err != nil {
				errs = append(errs, fmt.Errorf("body[%d] %s: %w", pos, v.Instr.Op, err))
			}
		}
		defined[id] = struct{}{}
	}
	return errors.Join(errs...)
}

func checkOperand(m *Module, f *Func, defined map[ValueID]struct{}, id ValueID) error {
	v := m.Value(id)
	if v == nil {
		return fmt.Errorf("unknown operand %d", id)
	}
	switch v.Kind {
	case ValueInstr, ValueArg:
		if v.Func != f.ID {
			return fmt.Errorf("operand %d belongs to another function", id)
		}
		if _, ok := defined[id]; !ok {
			return fmt.Errorf("operand %d used before definition", id)
		}
	case ValueInvalid:
		return fmt.Errorf("operand %d is invalid", id)
	}
	return nil
}
