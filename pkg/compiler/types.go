package compiler

import (
	"fmt"
	"strings"
)

// VarType is the static type of a value, a binding or a function. It is a
// closed set: *PrimitiveType, *ArrayType, *RecordType, *FunctionType and
// *VoidType.
type VarType interface {
	varType()
	String() string
}

// PrimitiveType is one of the four built-in scalar types. Use the Type*
// singletons; comparing by pointer is valid for primitives.
type PrimitiveType struct {
	Name string
}

func (*PrimitiveType) varType()         {}
func (p *PrimitiveType) String() string { return p.Name }

var (
	TypeInt    = &PrimitiveType{Name: "int"}
	TypeFloat  = &PrimitiveType{Name: "float"}
	TypeBool   = &PrimitiveType{Name: "bool"}
	TypeString = &PrimitiveType{Name: "string"}
)

// primitives maps a type keyword to its singleton.
var primitives = map[string]*PrimitiveType{
	"int":    TypeInt,
	"float":  TypeFloat,
	"bool":   TypeBool,
	"string": TypeString,
}

// VoidType is the return type of functions that return nothing.
type VoidType struct{}

func (*VoidType) varType()       {}
func (*VoidType) String() string { return "void" }

var TypeVoid = &VoidType{}

// ArrayType is Elem[]. Size is the length when it was known from a literal at
// creation and -1 otherwise; it is not part of the type's identity.
type ArrayType struct {
	Elem VarType
	Size int
}

func (*ArrayType) varType()         {}
func (a *ArrayType) String() string { return a.Elem.String() + "[]" }

// Field is one named, typed member of a record.
type Field struct {
	Name string
	Type VarType
}

func (f Field) String() string { return f.Name + " " + f.Type.String() }

// RecordType is a record layout. Fields keep declaration order, which is
// also the argument order for positional construction.
type RecordType struct {
	Name   string
	Fields []Field
}

func (*RecordType) varType()         {}
func (r *RecordType) String() string { return r.Name }

// Field returns the type of the named field.
func (r *RecordType) Field(name string) (VarType, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// FunctionType is a function signature.
type FunctionType struct {
	Return VarType
	Params []VarType
}

func (*FunctionType) varType() {}
func (f *FunctionType) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("fun(%s) %s", strings.Join(params, ", "), f.Return)
}

// Equal reports whether a and b have the same shape. Array sizes and record
// names are ignored; records compare their ordered field names and types.
// Self-referencing records terminate: a pair of records already being
// compared is assumed equal.
func Equal(a, b VarType) bool {
	return equal(a, b, nil)
}

type recordPair struct{ a, b *RecordType }

func equal(a, b VarType, seen map[recordPair]bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}

	switch x := a.(type) {
	case *PrimitiveType:
		y, ok := b.(*PrimitiveType)
		return ok && x.Name == y.Name
	case *VoidType:
		_, ok := b.(*VoidType)
		return ok
	case *ArrayType:
		y, ok := b.(*ArrayType)
		return ok && equal(x.Elem, y.Elem, seen)
	case *RecordType:
		y, ok := b.(*RecordType)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		pair := recordPair{x, y}
		if seen[pair] {
			return true
		}
		if seen == nil {
			seen = make(map[recordPair]bool)
		}
		seen[pair] = true
		for i := range x.Fields {
			if x.Fields[i].Name != y.Fields[i].Name || !equal(x.Fields[i].Type, y.Fields[i].Type, seen) {
				return false
			}
		}
		return true
	case *FunctionType:
		y, ok := b.(*FunctionType)
		if !ok || len(x.Params) != len(y.Params) || !equal(x.Return, y.Return, seen) {
			return false
		}
		for i := range x.Params {
			if !equal(x.Params[i], y.Params[i], seen) {
				return false
			}
		}
		return true
	}
	return false
}

func isNumeric(t VarType) bool {
	return t == TypeInt || t == TypeFloat
}

func isPrimitive(t VarType) bool {
	_, ok := t.(*PrimitiveType)
	return ok
}
