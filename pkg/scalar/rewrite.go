package scalar

// Rule is a single scalar-tree rewrite, matched against the style of the circuit-level rewrite
// rules: a rule knows how to recognize the pattern it targets and how to rebuild the node once
// it does. Rules compose bottom-up through Rewrite and never mutate the tree they're given -
// trees are immutable once built, so a rewrite always produces a new node.
type Rule interface {
	Name() string
	Apply(e Expr) (Expr, bool)
}

// Rewrite applies every rule in rules to e and to its children, bottom-up, until no rule fires
// anywhere in the tree. It is the entry point for rule-driven rewrites such as EliminateMulWeight;
// the relational lowering pass does not call it. No memo is kept, so a subtree shared by several
// parents is rewritten once per parent.
func Rewrite(e Expr, rules ...Rule) Expr {
	e = rewriteChildren(e, rules)
	for {
		changed := false
		for _, r := range rules {
			if out, ok := r.Apply(e); ok {
				e = out
				changed = true
			}
		}
		if !changed {
			return e
		}
		e = rewriteChildren(e, rules)
	}
}

func rewriteChildren(e Expr, rules []Rule) Expr {
	switch n := e.(type) {
	case *Literal, *Variable:
		return n
	case *FieldAccess:
		return NewFieldAccess(Rewrite(n.Expr, rules...), n.Index, n.typ)
	case *Deref:
		return NewDeref(Rewrite(n.Expr, rules...))
	case *Ref:
		return NewRef(Rewrite(n.Expr, rules...))
	case *Clone:
		return NewClone(Rewrite(n.Expr, rules...))
	case *Cast:
		return NewCast(Rewrite(n.Expr, rules...), n.typ)
	case *Binary:
		return NewBinary(n.Op, Rewrite(n.Left, rules...), Rewrite(n.Right, rules...), n.typ)
	case *Unary:
		return NewUnary(n.Op, Rewrite(n.Operand, rules...), n.typ)
	case *If:
		return NewIf(Rewrite(n.Cond, rules...), Rewrite(n.Then, rules...), Rewrite(n.Else, rules...), n.typ)
	case *Apply:
		return NewApply(n.Name, rewriteAll(n.Args, rules), n.typ)
	case *ApplyMethod:
		return NewApplyMethod(n.Name, Rewrite(n.Receiver, rules...), rewriteAll(n.Args, rules), n.typ)
	case *Closure:
		return &Closure{base: n.base, DebugName: n.DebugName, Params: n.Params, Body: Rewrite(n.Body, rules...)}
	case *IndexInto:
		return NewIndexInto(Rewrite(n.Array, rules...), Rewrite(n.Index, rules...), n.typ)
	case *RawTupleExpr:
		return NewRawTuple(rewriteAll(n.Exprs, rules))
	case *TupleExpr:
		return NewTuple(rewriteAll(n.Exprs, rules))
	case *Struct:
		fields := make([]StructField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = StructField{Name: f.Name, Value: Rewrite(f.Value, rules...)}
		}
		return NewStruct(n.Path, fields, n.typ)
	default:
		// Comparator/Sort/Path and other leaf-like nodes have no interesting subtrees to
		// rewrite for the rules this package currently ships.
		return e
	}
}

func rewriteAll(exprs []Expr, rules []Rule) []Expr {
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = Rewrite(e, rules...)
	}
	return out
}

// EliminateMulWeightRule rewrites MUL_WEIGHT(v,w) to MUL(v, cast(w, type(v))), preserving
// semantics while reducing the runtime primitive set: the back-end only ever needs to provide
// MUL, never a weight-specific multiply.
type EliminateMulWeightRule struct{}

func (EliminateMulWeightRule) Name() string { return "EliminateMulWeight" }

func (EliminateMulWeightRule) Apply(e Expr) (Expr, bool) {
	b, ok := e.(*Binary)
	if !ok || b.Op != MUL_WEIGHT {
		return e, false
	}
	v, w := b.Left, b.Right
	return NewBinary(MUL, v, CastTo(w, v.Type()), v.Type()), true
}

// EliminateMulWeight runs EliminateMulWeightRule over e to a fixpoint. It is a thin convenience
// wrapper: most callers reach for this directly rather than building a Rule slice by hand.
func EliminateMulWeight(e Expr) Expr {
	return Rewrite(e, EliminateMulWeightRule{})
}
