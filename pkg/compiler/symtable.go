package compiler

import (
	"fmt"
	"sort"
	"strings"
)

type ScopeType int

const (
	ScopeGlobal ScopeType = iota
	ScopeLocal
)

func (s ScopeType) String() string {
	if s == ScopeGlobal {
		return "GLOBAL"
	}
	return "SCOPE"
}

// SymbolTable maps names to static types for one lexical scope.
// Scopes form a tree: the global table is the root, every Block and every
// function opens a child. Lookup walks the parent chain, so an inner binding
// hides an outer one of the same name.
type SymbolTable struct {
	kind     ScopeType
	parent   *SymbolTable
	bindings map[string]VarType
}

// NewSymbolTable returns an empty global scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{kind: ScopeGlobal, bindings: make(map[string]VarType)}
}

// NewChildScope returns an empty scope whose parent is s.
func (s *SymbolTable) NewChildScope() *SymbolTable {
	return &SymbolTable{kind: ScopeLocal, parent: s, bindings: make(map[string]VarType)}
}

func (s *SymbolTable) Kind() ScopeType       { return s.kind }
func (s *SymbolTable) Parent() *SymbolTable { return s.parent }

// Insert binds name in this scope, replacing any existing binding here.
func (s *SymbolTable) Insert(name string, t VarType) {
	s.bindings[name] = t
}

// Contains reports whether name is bound in this scope, ignoring parents.
func (s *SymbolTable) Contains(name string) bool {
	_, ok := s.bindings[name]
	return ok
}

// Lookup returns the innermost binding of name visible from s.
func (s *SymbolTable) Lookup(name string) (VarType, bool) {
	t, _, ok := s.resolve(name)
	return t, ok
}

// resolve is Lookup that also reports the scope holding the binding.
func (s *SymbolTable) resolve(name string) (VarType, *SymbolTable, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if t, ok := scope.bindings[name]; ok {
			return t, scope, true
		}
	}
	return nil, nil, false
}

// Names returns the names bound in this scope, sorted.
func (s *SymbolTable) Names() []string {
	names := make([]string, 0, len(s.bindings))
	for name := range s.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns a deterministically ordered dump of this scope.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:\n", s.kind)
	if len(s.bindings) == 0 {
		sb.WriteString("  (empty)\n")
		return sb.String()
	}
	for _, name := range s.Names() {
		t := s.bindings[name]
		if rec, ok := t.(*RecordType); ok {
			fmt.Fprintf(&sb, "  %-20s  rec %v\n", name, rec.Fields)
			continue
		}
		fmt.Fprintf(&sb, "  %-20s  %s\n", name, t)
	}
	return sb.String()
}
