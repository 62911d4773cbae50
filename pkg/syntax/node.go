// Package syntax implements the syntax algebra and continuation chain of
// the incremental LL(1) derivative engine: immutable syntax graphs with
// precomputed nullability and FIRST-set information, plus the typed stack
// of deferred operations ("continuation chain") the derivative step
// maintains between tokens.
//
// Every value carried by a syntax is erased to `any` inside the graph
// itself; the typed public surface (Syntax[T, K]) only re-checks types at
// the boundary of user-supplied map functions, per the source spec's
// guidance for languages without higher-rank types.
package syntax

// NodeVariant is the marker interface implemented by every kind of syntax
// node. It is also the introspection surface other packages (the
// derivative engine, the grammar extractor) use to examine a graph without
// needing access to unexported fields.
type NodeVariant[K comparable] interface {
	isNodeVariant()
}

// FailureNode never accepts any input.
type FailureNode[K comparable] struct{}

func (FailureNode[K]) isNodeVariant() {}

// EpsilonNode always accepts the empty stream, yielding Value.
type EpsilonNode[K comparable] struct{ Value any }

func (EpsilonNode[K]) isNodeVariant() {}

// ElemNode matches a single token of the given Kind; its result is the
// token itself.
type ElemNode[K comparable] struct{ Kind K }

func (ElemNode[K]) isNodeVariant() {}

// DisjunctionNode offers Left or Right, chosen by FIRST-set membership
// (left-biased when both would otherwise apply).
type DisjunctionNode[K comparable] struct{ Left, Right *Node[K] }

func (DisjunctionNode[K]) isNodeVariant() {}

// RawSequenceNode matches Left then Right, producing a type-erased pair.
// The public Sequence constructor wraps this in a TransformNode that
// converts the pair into a concretely typed Pair[A, B].
type RawSequenceNode[K comparable] struct{ Left, Right *Node[K] }

func (RawSequenceNode[K]) isNodeVariant() {}

// RawConcatNode matches Left then Right, both over sequences represented
// as []any, producing their concatenation. The public Concat constructor
// wraps this in a TransformNode that converts back to a concrete []E.
type RawConcatNode[K comparable] struct{ Left, Right *Node[K] }

func (RawConcatNode[K]) isNodeVariant() {}

// TransformNode applies F to Inner's result.
type TransformNode[K comparable] struct {
	F     func(any) any
	Inner *Node[K]
}

func (TransformNode[K]) isNodeVariant() {}

// RecursiveNode is a by-need reference to another syntax, materialized
// exactly once. Its own identity (the *RecursiveNode value) is what grants
// it a dedicated non-terminal during grammar extraction.
type RecursiveNode[K comparable] struct {
	resolve func() *Node[K]
	Inner   *Node[K]
}

func (*RecursiveNode[K]) isNodeVariant() {}

// Node is one node of the immutable syntax graph. Identity (pointer
// equality) is what the engine and the grammar extractor use to recognize
// shared Disjunction/Recursive references.
type Node[K comparable] struct {
	Variant NodeVariant[K]

	analyzed bool
	nullOK   bool
	nullVal  any
	first    map[K]struct{}
}

// Nullable reports whether the empty token stream is accepted, and if so
// the value it yields. Triggers analysis on first use.
func (n *Node[K]) Nullable() (any, bool) {
	n.ensureAnalyzed()
	return n.nullVal, n.nullOK
}

// First returns the set of kinds that may begin a non-empty match.
// Triggers analysis on first use. The returned map must not be mutated.
func (n *Node[K]) First() map[K]struct{} {
	n.ensureAnalyzed()
	return n.first
}

// resolveInner materializes a RecursiveNode's inner syntax exactly once.
func (n *Node[K]) resolveInner() *Node[K] {
	rv, ok := n.Variant.(*RecursiveNode[K])
	if !ok {
		return nil
	}
	if rv.Inner == nil {
		rv.Inner = rv.resolve()
	}
	return rv.Inner
}

// ensureAnalyzed computes nullable/first for n and every node reachable
// from it, as a least fixed point over the (possibly cyclic, via
// Recursive) node set. Nodes are visited parent-first, so a child's
// values reach its parent one round later and acyclic substructure
// converges within a number of rounds bounded by its depth; cycles
// introduced by Recursive converge within a number of rounds
// bounded by the size of the reachable node set, since each node's
// nullability can flip from unknown to known at most once and FIRST only
// grows. The node count is finite for any syntax built from the public
// constructors, so this always terminates.
func (n *Node[K]) ensureAnalyzed() {
	if n.analyzed {
		return
	}

	var nodes []*Node[K]
	seen := make(map[*Node[K]]bool)
	var collect func(*Node[K])
	collect = func(x *Node[K]) {
		if x == nil || seen[x] {
			return
		}
		seen[x] = true
		nodes = append(nodes, x)
		switch v := x.Variant.(type) {
		case DisjunctionNode[K]:
			collect(v.Left)
			collect(v.Right)
		case RawSequenceNode[K]:
			collect(v.Left)
			collect(v.Right)
		case RawConcatNode[K]:
			collect(v.Left)
			collect(v.Right)
		case TransformNode[K]:
			collect(v.Inner)
		case *RecursiveNode[K]:
			collect(x.resolveInner())
		}
	}
	collect(n)

	rounds := 2*len(nodes) + 4
	for i := 0; i < rounds; i++ {
		for _, x := range nodes {
			ok, val, first := computeOnce(x)
			x.nullOK = x.nullOK || ok
			if ok {
				x.nullVal = val
			}
			if x.first == nil {
				x.first = make(map[K]struct{}, len(first))
			}
			for k := range first {
				x.first[k] = struct{}{}
			}
		}
	}

	for _, x := range nodes {
		x.analyzed = true
	}
}

// computeOnce computes a node's nullable/first purely from its children's
// current (possibly still-converging) cached values.
func computeOnce[K comparable](x *Node[K]) (bool, any, map[K]struct{}) {
	switch v := x.Variant.(type) {
	case FailureNode[K]:
		return false, nil, nil

	case EpsilonNode[K]:
		return true, v.Value, nil

	case ElemNode[K]:
		return false, nil, map[K]struct{}{v.Kind: {}}

	case DisjunctionNode[K]:
		first := unionMaps(v.Left.first, v.Right.first)
		// Left-biased: prefer the left alternative's nullable value
		// whenever it is known, matching the engine's own tie-break.
		if v.Left.nullOK {
			return true, v.Left.nullVal, first
		}
		if v.Right.nullOK {
			return true, v.Right.nullVal, first
		}
		return false, nil, first

	case RawSequenceNode[K]:
		first := copyMap(v.Left.first)
		if v.Left.nullOK {
			mergeInto(first, v.Right.first)
		}
		if v.Left.nullOK && v.Right.nullOK {
			return true, pair{v.Left.nullVal, v.Right.nullVal}, first
		}
		return false, nil, first

	case RawConcatNode[K]:
		first := copyMap(v.Left.first)
		if v.Left.nullOK {
			mergeInto(first, v.Right.first)
		}
		if v.Left.nullOK && v.Right.nullOK {
			leftSeq, _ := v.Left.nullVal.([]any)
			rightSeq, _ := v.Right.nullVal.([]any)
			return true, appendSeq(leftSeq, rightSeq), first
		}
		return false, nil, first

	case TransformNode[K]:
		first := copyMap(v.Inner.first)
		if v.Inner.nullOK {
			return true, v.F(v.Inner.nullVal), first
		}
		return false, nil, first

	case *RecursiveNode[K]:
		inner := x.resolveInner()
		if inner == nil {
			return false, nil, nil
		}
		return inner.nullOK, inner.nullVal, copyMap(inner.first)

	default:
		return false, nil, nil
	}
}

func unionMaps[K comparable](a, b map[K]struct{}) map[K]struct{} {
	out := copyMap(a)
	mergeInto(out, b)
	return out
}

func copyMap[K comparable](a map[K]struct{}) map[K]struct{} {
	out := make(map[K]struct{}, len(a))
	for k := range a {
		out[k] = struct{}{}
	}
	return out
}

func mergeInto[K comparable](dst, src map[K]struct{}) {
	for k := range src {
		dst[k] = struct{}{}
	}
}
