// Package builtins names the always-available types a drift program can
// reference without declaring them — the small non-extensible base of
// internal/types's lattice. Adapted from the teacher's BuiltinType table
// (which named Move/EVM primitives); the shape survives, the contents
// are now drift's own Any/Nothing/Int/String/Bool.
package builtins

type BuiltinType string

const (
	Any     BuiltinType = "Any"
	Nothing BuiltinType = "Nothing"
	Int     BuiltinType = "Int"
	StringT BuiltinType = "String"
	Bool    BuiltinType = "Bool"
)

var BuiltinTypes = map[string]bool{
	string(Any):     true,
	string(Nothing): true,
	string(Int):     true,
	string(StringT): true,
	string(Bool):    true,
}

func IsBuiltinType(typeName string) bool {
	return BuiltinTypes[typeName]
}
