// Package names assigns stable, unique C identifiers to IR values.
//
// A Table is one scope: the module-global scope (functions, globals) or the
// local scope of a function being generated (instructions, parameters).
// Names are either requested through a hint or synthesized as v1, v2, ...
// Once bound a name is never freed or reassigned.
package names

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"clgen/internal/ir"
)

// ErrNameCollision reports an explicit request for a name that is already
// bound to a different value in the same scope.
var ErrNameCollision = errors.New("name collision")

// Scope distinguishes the two namespaces.
type Scope uint8

const (
	ScopeGlobal Scope = iota
	ScopeLocal
)

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "local"
}

// Table binds values to names within one scope.
// It is safe for concurrent use.
type Table struct {
	mu      sync.Mutex
	scope   Scope
	byValue map[ir.ValueID]string
	byName  map[string]ir.ValueID
	counter int
}

// NewTable creates an empty scope.
func NewTable(scope Scope) *Table {
	return &Table{
		scope:   scope,
		byValue: make(map[ir.ValueID]string),
		byName:  make(map[string]ir.ValueID),
	}
}

// Scope returns the namespace this table serves.
func (t *Table) Scope() Scope { return t.scope }

// GetOrCreate returns the name bound to id, binding one first if needed.
// A non-empty hint is sanitized and bound as is; if it is taken by another
// value the call fails with ErrNameCollision. An empty hint synthesizes the
// next free v<N>.
func (t *Table) GetOrCreate(id ir.ValueID, hint string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if name, ok := t.byValue[id]; ok {
		return name, nil
	}
	if hint != "" {
		name := Sanitize(hint)
		if owner, taken := t.byName[name]; taken {
			return "", fmt.Errorf("%w: %s name %q requested for value %d is bound to value %d", ErrNameCollision, t.scope, name, id, owner)
		}
		t.bind(id, name)
		return name, nil
	}
	for {
		t.counter++
		name := "v" + strconv.Itoa(t.counter)
		if _, taken := t.byName[name]; taken {
			continue
		}
		t.bind(id, name)
		return name, nil
	}
}

func (t *Table) bind(id ir.ValueID, name string) {
	t.byValue[id] = name
	t.byName[name] = id
}

// Lookup returns the bound name without creating one.
func (t *Table) Lookup(id ir.ValueID) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	name, ok := t.byValue[id]
	return name, ok
}

// Taken reports whether name is bound in this scope.
func (t *Table) Taken(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.byName[name]
	return ok
}

// Len returns the number of bound names.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byValue)
}

// Registry pairs the module-global scope with the local scope of the
// function currently being generated.
type Registry struct {
	Global *Table
	Local  *Table
}

// NewRegistry creates a registry with fresh global and local scopes.
func NewRegistry() *Registry {
	return &Registry{Global: NewTable(ScopeGlobal), Local: NewTable(ScopeLocal)}
}

// ForFunc returns a registry sharing r's global scope with a fresh local one.
func (r *Registry) ForFunc() *Registry {
	return &Registry{Global: r.Global, Local: NewTable(ScopeLocal)}
}

// GetOrCreate dispatches to the table for scope.
func (r *Registry) GetOrCreate(scope Scope, id ir.ValueID, hint string) (string, error) {
	if scope == ScopeGlobal {
		return r.Global.GetOrCreate(id, hint)
	}
	return r.Local.GetOrCreate(id, hint)
}
