package codegen

import (
	"fmt"

	"clgen/internal/ir"
	"clgen/internal/names"
)

// Ledger holds one ValueInfo per value of a function, in creation order.
type Ledger struct {
	infos map[ir.ValueID]*ValueInfo
	order []*ValueInfo
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{infos: make(map[ir.ValueID]*ValueInfo)}
}

// GetOrCreate returns v's entry, creating it with a name from locals when
// absent. hint is the requested name; empty synthesizes one.
func (l *Ledger) GetOrCreate(locals *names.Table, v *ir.Value, hint string) (*ValueInfo, error) {
	if v == nil {
		return nil, fmt.Errorf("nil value")
	}
	if info, ok := l.infos[v.ID]; ok {
		return info, nil
	}
	name, err := locals.GetOrCreate(v.ID, hint)
	if err != nil {
		return nil, err
	}
	info := &ValueInfo{Value: v, Name: name}
	l.infos[v.ID] = info
	l.order = append(l.order, info)
	return info, nil
}

// Lookup returns the entry for id without creating one.
func (l *Ledger) Lookup(id ir.ValueID) (*ValueInfo, bool) {
	info, ok := l.infos[id]
	return info, ok
}

// Infos returns the entries in creation order. Do not modify the slice.
func (l *Ledger) Infos() []*ValueInfo {
	return l.order
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.order)
}
