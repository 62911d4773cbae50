// Package engine is the incremental derivative driver: it steps a
// syntax's continuation state one token at a time, and resolves it at end
// of input, without ever rebuilding derivative syntax trees the way
// classical Brzozowski derivatives do.
package engine

import (
	"fmt"
	"strings"

	"github.com/shadowCow/ll1deriv-go/pkg/syntax"
)

// TraceEvent is emitted to a Config's trace hook at notable points during
// stepping, for callers that want visibility without a logging
// dependency.
type TraceEvent struct {
	Step   string
	Detail string
}

// Config holds the engine's optional knobs: a trace hook and a recursion
// depth guard protecting against a malformed (non-well-founded) syntax
// graph looping forever while resolving nullable redirects.
type Config struct {
	trace    func(TraceEvent)
	maxDepth int
}

// Option configures a Config.
type Option func(*Config)

// WithTrace installs a hook invoked at each notable step of the engine.
func WithTrace(f func(TraceEvent)) Option {
	return func(c *Config) { c.trace = f }
}

// WithMaxDepth overrides the default redirect-chasing depth guard.
func WithMaxDepth(n int) Option {
	return func(c *Config) { c.maxDepth = n }
}

func newConfig(opts []Option) *Config {
	c := &Config{maxDepth: 10000}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Config) emit(step, detail string) {
	if c.trace != nil {
		c.trace(TraceEvent{Step: step, Detail: detail})
	}
}

// DisjointnessViolation describes one place a Disjunction's two
// alternatives are not cleanly distinguishable by one token of lookahead.
type DisjointnessViolation struct {
	Where   string
	Overlap []string
}

func (v DisjointnessViolation) String() string {
	if len(v.Overlap) == 0 {
		return v.Where
	}
	return fmt.Sprintf("%s: %s", v.Where, strings.Join(v.Overlap, ", "))
}

// StructuralDefectError reports a programmer error in how a syntax was
// built: either an LL(1) disjointness violation found by Analyze, or
// derive() reaching a node it should be structurally impossible to reach
// (Failure, or a node whose FIRST set does not contain the token being
// derived). It is never returned for ordinary parse failure — that is
// reported as a ParseResult variant, not an error.
type StructuralDefectError struct {
	Violations []DisjointnessViolation
	Message    string
}

func (e *StructuralDefectError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	lines := make([]string, 0, len(e.Violations)+1)
	lines = append(lines, fmt.Sprintf("grammar is not LL(1): found %d disjointness violation(s)", len(e.Violations)))
	for i, v := range e.Violations {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, v.String()))
	}
	return strings.Join(lines, "\n")
}

// Analyze walks s's reachable graph and reports every Disjunction whose
// alternatives are not disjoint: either their FIRST sets overlap, or both
// accept the empty input. Per-disjunction checks stop nowhere early — all
// violations are collected before returning, mirroring how a batch
// conflict report works, rather than failing at the first one found.
func Analyze[T any, K comparable](s syntax.Syntax[T, K]) error {
	violations := collectViolations(s.Node(), map[*syntax.Node[K]]bool{})
	if len(violations) > 0 {
		return &StructuralDefectError{Violations: violations}
	}
	return nil
}

func collectViolations[K comparable](n *syntax.Node[K], seen map[*syntax.Node[K]]bool) []DisjointnessViolation {
	if n == nil || seen[n] {
		return nil
	}
	seen[n] = true
	n.First() // trigger analysis, resolving any Recursive's inner

	var out []DisjointnessViolation
	switch v := n.Variant.(type) {
	case syntax.DisjunctionNode[K]:
		out = append(out, checkDisjoint(v.Left, v.Right)...)
		out = append(out, collectViolations(v.Left, seen)...)
		out = append(out, collectViolations(v.Right, seen)...)
	case syntax.RawSequenceNode[K]:
		out = append(out, collectViolations(v.Left, seen)...)
		out = append(out, collectViolations(v.Right, seen)...)
	case syntax.RawConcatNode[K]:
		out = append(out, collectViolations(v.Left, seen)...)
		out = append(out, collectViolations(v.Right, seen)...)
	case syntax.TransformNode[K]:
		out = append(out, collectViolations(v.Inner, seen)...)
	case *syntax.RecursiveNode[K]:
		out = append(out, collectViolations(v.Inner, seen)...)
	}
	return out
}

func checkDisjoint[K comparable](left, right *syntax.Node[K]) []DisjointnessViolation {
	_, leftNullable := left.Nullable()
	_, rightNullable := right.Nullable()

	var overlap []string
	for k := range left.First() {
		if _, ok := right.First()[k]; ok {
			overlap = append(overlap, fmt.Sprint(k))
		}
	}

	var violations []DisjointnessViolation
	if len(overlap) > 0 {
		violations = append(violations, DisjointnessViolation{
			Where:   "alternatives share a starting token",
			Overlap: overlap,
		})
	}
	if leftNullable && rightNullable {
		violations = append(violations, DisjointnessViolation{
			Where: "both alternatives accept the empty input",
		})
	}
	return violations
}

// ParseResult is the closed set of outcomes Apply can produce. It is
// never an error: expected parse failure (an unexpected token, or running
// out of input mid-parse) is a value, not an exception.
type ParseResult[A any, Tok any, K comparable] interface {
	isParseResult()
}

// Parsed reports a successful parse.
type Parsed[A any, Tok any, K comparable] struct {
	Value A
	Next  syntax.ContinuedState[K]
}

func (Parsed[A, Tok, K]) isParseResult() {}

// UnexpectedToken reports that Token could not continue the parse from
// Next's state.
type UnexpectedToken[A any, Tok any, K comparable] struct {
	Token Tok
	Next  syntax.ContinuedState[K]
}

func (UnexpectedToken[A, Tok, K]) isParseResult() {}

// UnexpectedEnd reports that input ran out while Next's state still
// required more tokens.
type UnexpectedEnd[A any, Tok any, K comparable] struct {
	Next syntax.ContinuedState[K]
}

func (UnexpectedEnd[A, Tok, K]) isParseResult() {}

// Apply steps state through tokens one at a time and resolves the result
// at end of input. kindOf extracts the lookahead kind from a token. The
// returned error is non-nil only for a structural defect in the syntax
// itself (see StructuralDefectError); ordinary parse failure is reported
// through the returned ParseResult.
func Apply[A any, Tok any, K comparable](
	state syntax.ContinuedState[K],
	tokens []Tok,
	kindOf func(Tok) K,
	opts ...Option,
) (ParseResult[A, Tok, K], error) {
	cfg := newConfig(opts)
	cur := state
	for _, t := range tokens {
		k := kindOf(t)
		n2, chain2, ok, err := step[K](cur.Current, cur.Chain, any(t), k, cfg)
		if err != nil {
			return nil, err
		}
		if !ok {
			cfg.emit("unexpectedToken", fmt.Sprint(k))
			return UnexpectedToken[A, Tok, K]{Token: t, Next: cur}, nil
		}
		cur = syntax.ContinuedState[K]{Current: n2, Chain: chain2}
	}

	val, ok, err := result[K](cur, cfg)
	if err != nil {
		return nil, err
	}
	if !ok {
		cfg.emit("unexpectedEnd", "")
		return UnexpectedEnd[A, Tok, K]{Next: cur}, nil
	}
	typed, ok := val.(A)
	if !ok {
		return nil, &StructuralDefectError{
			Message: fmt.Sprintf("parse produced a value of an unexpected type: %#v", val),
		}
	}
	cfg.emit("parsed", "")
	return Parsed[A, Tok, K]{Value: typed, Next: cur}, nil
}

// step performs one derivative step: locate where token kind k can be
// consumed (chasing nullable redirects as needed), descend one Elem,
// then fold the token's value back through the resulting chain.
func step[K comparable](n *syntax.Node[K], chain *syntax.Frame[K], token any, k K, cfg *Config) (*syntax.Node[K], *syntax.Frame[K], bool, error) {
	n2, chain2, ok, err := findFirst(n, chain, k, cfg)
	if err != nil {
		return nil, nil, false, err
	}
	if !ok {
		return nil, nil, false, nil
	}

	chain3, err := derive(n2, chain2, k, cfg)
	if err != nil {
		return nil, nil, false, err
	}

	nextN, nextChain := syntax.FoldStack(chain3, token)
	return nextN, nextChain, true, nil
}

// findFirst locates the (node, chain) pair actually positioned to accept
// a token of kind k, chasing nullable alternatives by folding their value
// through the chain until either a node whose FIRST set contains k is
// found, or no further redirect is possible (unacceptable).
func findFirst[K comparable](n *syntax.Node[K], chain *syntax.Frame[K], k K, cfg *Config) (*syntax.Node[K], *syntax.Frame[K], bool, error) {
	for depth := 0; ; depth++ {
		if depth > cfg.maxDepth {
			return nil, nil, false, &StructuralDefectError{Message: "findFirst exceeded maximum redirect depth"}
		}
		if _, ok := n.First()[k]; ok {
			return n, chain, true, nil
		}
		val, nullable := n.Nullable()
		if !nullable || chain == nil {
			return n, chain, false, nil
		}
		cfg.emit("findFirst.redirect", fmt.Sprint(k))
		n, chain = syntax.FoldStack(chain, val)
	}
}

// derive descends from n (whose FIRST set is already known to contain k)
// to the Elem node that will actually consume the token, pushing a frame
// for each structural layer crossed.
func derive[K comparable](n *syntax.Node[K], chain *syntax.Frame[K], k K, cfg *Config) (*syntax.Frame[K], error) {
	for depth := 0; ; depth++ {
		if depth > cfg.maxDepth {
			return nil, &StructuralDefectError{Message: "derive exceeded maximum descent depth"}
		}
		switch v := n.Variant.(type) {
		case syntax.ElemNode[K]:
			return chain, nil

		case syntax.DisjunctionNode[K]:
			if _, ok := v.Left.First()[k]; ok {
				n = v.Left
			} else {
				n = v.Right
			}

		case syntax.RawSequenceNode[K]:
			if _, ok := v.Left.First()[k]; ok {
				chain = syntax.PushFollowBy(chain, v.Right)
				n = v.Left
			} else {
				leftVal, _ := v.Left.Nullable()
				chain = syntax.PushPrependValue(chain, leftVal)
				n = v.Right
			}

		case syntax.RawConcatNode[K]:
			if _, ok := v.Left.First()[k]; ok {
				chain = syntax.PushConcatFollowBy(chain, v.Right)
				n = v.Left
			} else {
				leftVal, _ := v.Left.Nullable()
				leftSeq, _ := leftVal.([]any)
				chain = syntax.PushConcatPrependValues(chain, leftSeq)
				n = v.Right
			}

		case syntax.TransformNode[K]:
			chain = syntax.PushApplyFunction(chain, v.F)
			n = v.Inner

		case *syntax.RecursiveNode[K]:
			n = v.Inner

		default:
			// FailureNode, EpsilonNode: both have an empty FIRST set, so
			// findFirst can never have routed derive here.
			return nil, &StructuralDefectError{
				Message: fmt.Sprintf("derive reached a node with no FIRST entry for %v", k),
			}
		}
	}
}

// result resolves a state at end of input: repeatedly folds the current
// node's nullable value through the chain until the chain is exhausted,
// or reports that more input was required.
func result[K comparable](state syntax.ContinuedState[K], cfg *Config) (any, bool, error) {
	n, chain := state.Current, state.Chain
	for depth := 0; ; depth++ {
		if depth > cfg.maxDepth {
			return nil, false, &StructuralDefectError{Message: "result exceeded maximum fold depth"}
		}
		val, ok := n.Nullable()
		if !ok {
			return nil, false, nil
		}
		if chain == nil {
			return val, true, nil
		}
		n, chain = syntax.FoldStack(chain, val)
	}
}
