package types

import "driftc/internal/ast"

// TypeContext is the engine's read-only view of the type lattice:
// subtyping queries only, no inference or checking (those stay the
// resolver's job, spec.md §1 non-goals for this package).
type TypeContext struct {
	registry *Registry
}

func NewTypeContext(registry *Registry) *TypeContext {
	return &TypeContext{registry: registry}
}

// Registry exposes the underlying class table — callers that need to
// check IsKnownClass directly (e.g. the analyzer resolving a surface
// VariableType) go through this rather than duplicating it.
func (tc *TypeContext) Registry() *Registry { return tc.registry }

// IsSubtypeOf reports whether `a` can be used wherever `b` is expected.
// Nullability is part of the lattice: T is a subtype of T?, but not vice
// versa; Nothing is a subtype of everything (including every nullable
// type, since it has no values to violate non-nullness); every non-null
// type is a subtype of Any, every type (nullable or not) is a subtype of
// Any?.
func (tc *TypeContext) IsSubtypeOf(a, b Type) bool {
	if a == nil || b == nil {
		return false
	}
	if a.IsNullable() && !b.IsNullable() {
		return false
	}
	return tc.isSubtypeIgnoringNullability(a, b)
}

func (tc *TypeContext) isSubtypeIgnoringNullability(a, b Type) bool {
	if a.Name() == b.Name() {
		return true
	}
	if a.Name() == NothingName {
		return true
	}
	if b.Name() == AnyName {
		return true
	}
	if ai, ok := a.(IntersectionType); ok {
		for _, m := range ai.Members {
			if tc.isSubtypeIgnoringNullability(m, b) {
				return true
			}
		}
		return false
	}
	if bi, ok := b.(IntersectionType); ok {
		for _, m := range bi.Members {
			if !tc.isSubtypeIgnoringNullability(a, m) {
				return false
			}
		}
		return true
	}
	// Every declared class and builtin (other than Any/Nothing) sits
	// directly under Any; there is no user-extensible hierarchy in
	// drift, so no further cases apply.
	return false
}

// ResolveVariableType turns a surface VariableType (as the parser
// produces it, e.g. "Int", "Foo?") into the engine's Type, recursing
// into generic arguments. Unknown names still resolve to a Named value —
// the registry only gates IsKnownClass checks elsewhere, not parsing.
func (tc *TypeContext) ResolveVariableType(vt *ast.VariableType) Type {
	if vt == nil {
		return nil
	}
	n := Named{NameValue: vt.Name, Nullable: vt.Nullable}
	for _, g := range vt.Generics {
		n.Generics = append(n.Generics, tc.ResolveVariableType(g))
	}
	return n
}

// IsSameType reports mutual subtyping, used when deciding whether adding a
// TypeStatement member would be tautological (spec.md "addImplication:
// ignore ... tautological").
func (tc *TypeContext) IsSameType(a, b Type) bool {
	return tc.IsSubtypeOf(a, b) && tc.IsSubtypeOf(b, a)
}
