// Package types is the engine's external TypeContext/TypeIntersector
// collaborator (spec.md §1, §6): name resolution, subtyping and the
// intersection/widening arithmetic the dataflow engine itself never
// performs directly. It is deliberately small — just enough lattice to
// drive smartcast refinement — grounded on kanso's own
// internal/types.TypeRegistry for the builtin/user-defined split.
package types

import (
	"sort"
	"strings"

	"driftc/internal/builtins"
)

// Type is any drift type reference: a builtin, a user-defined class, or an
// IntersectionType produced by TypeIntersector.Intersect.
type Type interface {
	Name() string
	IsNullable() bool
	// NonNull returns the same type with Nullable forced false.
	NonNull() Type
	String() string
}

// Named is a plain (possibly nullable, possibly generic) named type —
// "Any", "Any?", "String", "List<Int>", or a user class.
type Named struct {
	NameValue string
	Nullable  bool
	Generics  []Type
}

func (n Named) Name() string    { return n.NameValue }
func (n Named) IsNullable() bool { return n.Nullable }
func (n Named) NonNull() Type    { n.Nullable = false; return n }

func (n Named) String() string {
	var b strings.Builder
	b.WriteString(n.NameValue)
	if len(n.Generics) > 0 {
		b.WriteString("<")
		for i, g := range n.Generics {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(g.String())
		}
		b.WriteString(">")
	}
	if n.Nullable {
		b.WriteString("?")
	}
	return b.String()
}

// Builtins that exist regardless of what the program declares. Any is the
// root of the non-null lattice; Any? is its nullable counterpart; Nothing
// is the bottom type (subtype of everything, spec.md "x !is Nothing?").
const (
	AnyName     = "Any"
	NothingName = "Nothing"
	IntName     = "Int"
	StringName  = "String"
	BoolName    = "Bool"
)

func Any() Named     { return Named{NameValue: AnyName} }
func AnyQ() Named    { return Named{NameValue: AnyName, Nullable: true} }
func Nothing() Named { return Named{NameValue: NothingName} }

// NewNamed builds a reference to a builtin or user-declared class by
// name, as the parser/resolver sees it written in source (spec.md's
// VariableType surface syntax, `T` or `T?`).
func NewNamed(name string, nullable bool) Named {
	return Named{NameValue: name, Nullable: nullable}
}

// IsBuiltinName reports whether name is one of the always-available
// builtins, independent of any Registry — delegates to internal/builtins
// so the name list has one owner.
func IsBuiltinName(name string) bool {
	return builtins.IsBuiltinType(name)
}

// IntersectionType represents "the value has every one of these types
// simultaneously" — the result of intersecting ≥2 mutually unrelated
// TypeStatement members (spec.md TypeStatement.exactType).
type IntersectionType struct {
	Members  []Type
	Nullable bool
}

func (i IntersectionType) Name() string {
	names := make([]string, len(i.Members))
	for idx, m := range i.Members {
		names[idx] = m.Name()
	}
	sort.Strings(names)
	return strings.Join(names, " & ")
}
func (i IntersectionType) IsNullable() bool { return i.Nullable }
func (i IntersectionType) NonNull() Type    { i.Nullable = false; return i }
func (i IntersectionType) String() string {
	s := i.Name()
	if i.Nullable {
		s += "?"
	}
	return s
}

// Registry resolves user-declared class names and their (single,
// implicit) superclass — every class extends Any. It stands in for the
// "resolving names ... type-checking and subtyping" collaborator spec.md
// §1 names as out of scope for the engine itself and hands to it here.
type Registry struct {
	classes map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]bool)}
}

func (r *Registry) DeclareClass(name string) {
	r.classes[name] = true
}

func (r *Registry) IsKnownClass(name string) bool {
	return r.classes[name]
}
