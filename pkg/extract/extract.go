// Package extract turns a syntax graph into a finite BNF-style grammar:
// a worklist traversal keyed by node identity discovers sharing through
// Disjunction and Recursive nodes and assigns each a non-terminal id,
// while Sequence/Concat/Transform are inlined directly into whichever
// alternative they appear in.
package extract

import (
	"sort"

	"github.com/shadowCow/ll1deriv-go/pkg/grammar"
	"github.com/shadowCow/ll1deriv-go/pkg/syntax"
)

// PrintKind renders a token kind as the display form a terminal symbol
// should carry in the extracted grammar.
type PrintKind[K comparable] func(K) string

// FromSyntax extracts the grammar reachable from s. Non-terminal ids are
// assigned in the order a Disjunction or Recursive node is first
// referenced, starting with s itself as id 0 (the start symbol).
func FromSyntax[T any, K comparable](s syntax.Syntax[T, K], print PrintKind[K]) grammar.Grammar {
	e := &extractor[K]{
		print: print,
		ids:   map[*syntax.Node[K]]int{},
		done:  map[int]bool{},
	}
	start := e.idFor(s.Node())

	for len(e.worklist) > 0 {
		n := e.worklist[0]
		e.worklist = e.worklist[1:]
		id := e.ids[n]
		if e.done[id] {
			continue
		}
		e.done[id] = true
		e.rules = append(e.rules, grammar.Rule{ID: id, Alternatives: e.flattenTop(n)})
	}

	sort.Slice(e.rules, func(i, j int) bool { return e.rules[i].ID < e.rules[j].ID })
	return grammar.Grammar{Rules: e.rules, Start: start}
}

type extractor[K comparable] struct {
	print    PrintKind[K]
	ids      map[*syntax.Node[K]]int
	nextID   int
	worklist []*syntax.Node[K]
	done     map[int]bool
	rules    []grammar.Rule
}

// idFor returns the id assigned to n, assigning and enqueueing a fresh one
// on first reference. Identity (pointer equality), not structural
// equality, is what makes a shared Disjunction or Recursive node collapse
// to a single rule.
func (e *extractor[K]) idFor(n *syntax.Node[K]) int {
	if id, ok := e.ids[n]; ok {
		return id
	}
	id := e.nextID
	e.nextID++
	e.ids[n] = id
	e.worklist = append(e.worklist, n)
	return id
}

// unwrapTop sees through Transform and Recursive at the position defining
// a rule's own body: Transform is always transparent, and a rule for a
// Recursive non-terminal is defined by its (by-need resolved) inner
// syntax, not by the wrapper itself.
func (e *extractor[K]) unwrapTop(n *syntax.Node[K]) *syntax.Node[K] {
	for {
		n.First() // ensure analyzed, resolving Recursive's Inner
		switch v := n.Variant.(type) {
		case syntax.TransformNode[K]:
			n = v.Inner
		case *syntax.RecursiveNode[K]:
			n = v.Inner
		default:
			return n
		}
	}
}

// flattenTop computes one rule's alternatives for n.
func (e *extractor[K]) flattenTop(n *syntax.Node[K]) []grammar.Alternative {
	body := e.unwrapTop(n)
	if _, ok := body.Variant.(syntax.FailureNode[K]); ok {
		// A top-level Failure is an unreachable non-terminal: no
		// alternative at all, not an alternative with no symbols.
		return nil
	}

	bodies := e.flattenDisjunction(body)
	alts := make([]grammar.Alternative, 0, len(bodies))
	for _, b := range bodies {
		alts = append(alts, e.flattenSymbols(b))
	}
	return alts
}

// flattenDisjunction collects the leaf operands of the chain of
// Disjunctions directly at n's top, in left-to-right order. Each leaf
// becomes one alternative.
func (e *extractor[K]) flattenDisjunction(n *syntax.Node[K]) []*syntax.Node[K] {
	n = e.unwrapTop(n)
	if d, ok := n.Variant.(syntax.DisjunctionNode[K]); ok {
		left := e.flattenDisjunction(d.Left)
		right := e.flattenDisjunction(d.Right)
		return append(left, right...)
	}
	return []*syntax.Node[K]{n}
}

// flattenSymbols renders one alternative's body as a sequence of symbols.
// Sequence/Concat/Transform are inlined; a Disjunction or Recursive
// reached here (i.e. not at the rule's own top) becomes a reference to
// its own non-terminal instead of being inlined.
func (e *extractor[K]) flattenSymbols(n *syntax.Node[K]) grammar.Alternative {
	switch v := n.Variant.(type) {
	case syntax.FailureNode[K]:
		return grammar.Alternative{}
	case syntax.EpsilonNode[K]:
		return grammar.Alternative{grammar.Eps}
	case syntax.ElemNode[K]:
		return grammar.Alternative{grammar.Term(e.print(v.Kind))}
	case syntax.TransformNode[K]:
		return e.flattenSymbols(v.Inner)
	case syntax.RawSequenceNode[K]:
		return append(e.flattenSymbols(v.Left), e.flattenSymbols(v.Right)...)
	case syntax.RawConcatNode[K]:
		return append(e.flattenSymbols(v.Left), e.flattenSymbols(v.Right)...)
	case syntax.DisjunctionNode[K]:
		return grammar.Alternative{grammar.NonTerm(e.idFor(n))}
	case *syntax.RecursiveNode[K]:
		return grammar.Alternative{grammar.NonTerm(e.idFor(n))}
	default:
		return grammar.Alternative{}
	}
}
