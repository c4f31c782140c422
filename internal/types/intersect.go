package types

// Intersector is the engine's TypeIntersector collaborator (spec.md §1,
// §4.4): the "final intersection/widening arithmetic on type lattices"
// the dataflow engine delegates to rather than computing itself.
type Intersector struct {
	ctx *TypeContext
}

func NewIntersector(ctx *TypeContext) *Intersector {
	return &Intersector{ctx: ctx}
}

// Intersect computes "the value has every one of these types at once",
// used both for TypeStatement.exactType members (spec.md §3) and for
// ReceiverStack.updateAllReceivers' refined-receiver recomputation
// (spec.md §4.4: "intersect(currentRefinements ∪ originalType)").
//
// Redundant members (one already implied by another, e.g. {Any, String}
// -> String) are dropped; nullability of the result is the conjunction
// of all members' nullability, since the value can only be a
// simultaneous member of a nullable type if every member in the set
// permits null.
func (in *Intersector) Intersect(ts []Type) Type {
	if len(ts) == 0 {
		return Any()
	}
	if len(ts) == 1 {
		return ts[0]
	}

	kept := make([]Type, 0, len(ts))
	nullable := true
	for _, t := range ts {
		if !t.IsNullable() {
			nullable = false
		}
		redundant := false
		for _, k := range kept {
			if in.ctx.isSubtypeIgnoringNullability(k, t) {
				// k is already at least as specific as t
				redundant = true
				break
			}
		}
		if redundant {
			continue
		}
		// t is at least as specific as some existing member: replace it.
		next := kept[:0]
		for _, k := range kept {
			if !in.ctx.isSubtypeIgnoringNullability(t, k) {
				next = append(next, k)
			}
		}
		kept = append(next, t)
	}

	if len(kept) == 1 {
		if nullable != kept[0].IsNullable() {
			return withNullable(kept[0], nullable)
		}
		return kept[0]
	}
	return IntersectionType{Members: kept, Nullable: nullable}
}

// Widen drops an IntersectionType down to its last (most recently
// added) member; any other type is returned unchanged.
func Widen(t Type) Type {
	if it, ok := t.(IntersectionType); ok && len(it.Members) > 0 {
		return it.Members[len(it.Members)-1]
	}
	return t
}

func withNullable(t Type, nullable bool) Type {
	switch v := t.(type) {
	case Named:
		v.Nullable = nullable
		return v
	case IntersectionType:
		v.Nullable = nullable
		return v
	default:
		return t
	}
}
