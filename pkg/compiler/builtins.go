package compiler

// Signatures of the runtime functions every program can call. len and
// writeln are checked specially by the analyzer: len takes a string or any
// array, writeln takes any primitive.
var (
	builtinNot     = &FunctionType{Return: TypeBool, Params: []VarType{TypeBool}}
	builtinLen     = &FunctionType{Return: TypeInt, Params: []VarType{TypeString}}
	builtinWriteln = &FunctionType{Return: TypeVoid, Params: []VarType{TypeString}}
)

var builtins = []struct {
	name string
	sig  *FunctionType
}{
	{"!", builtinNot},
	{"chr", &FunctionType{Return: TypeString, Params: []VarType{TypeInt}}},
	{"floor", &FunctionType{Return: TypeInt, Params: []VarType{TypeFloat}}},
	{"len", builtinLen},
	{"readInt", &FunctionType{Return: TypeInt}},
	{"readFloat", &FunctionType{Return: TypeFloat}},
	{"readString", &FunctionType{Return: TypeString}},
	{"writeInt", &FunctionType{Return: TypeVoid, Params: []VarType{TypeInt}}},
	{"writeFloat", &FunctionType{Return: TypeVoid, Params: []VarType{TypeFloat}}},
	{"write", &FunctionType{Return: TypeVoid, Params: []VarType{TypeString}}},
	{"writeln", builtinWriteln},
}

// registerBuiltins binds every builtin signature in global.
func registerBuiltins(global *SymbolTable) {
	for _, b := range builtins {
		global.Insert(b.name, b.sig)
	}
}

// IsBuiltin reports whether name is a runtime function rather than one
// declared in the program.
func IsBuiltin(name string) bool {
	for _, b := range builtins {
		if b.name == name {
			return true
		}
	}
	return false
}
