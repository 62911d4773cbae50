package syntax

// pair is the type-erased representation of a Sequence's paired result.
// The public Sequence constructor wraps a RawSequenceNode in a
// TransformNode that converts a pair back into a concrete Pair[A, B].
type pair struct{ a, b any }

func appendSeq(prefix, suffix []any) []any {
	out := make([]any, 0, len(prefix)+len(suffix))
	out = append(out, prefix...)
	out = append(out, suffix...)
	return out
}

// frameKind identifies which of the five continuation frame shapes a Frame
// holds. Only one of the payload fields below is meaningful per kind.
type frameKind int

const (
	kindApplyFunction frameKind = iota
	kindPrependValue
	kindFollowBy
	kindConcatPrependValues
	kindConcatFollowBy
)

// Frame is one entry of the continuation chain threaded through token
// consumption: a deferred operation waiting for the value a derivative
// step eventually produces. Frames are immutable; pushing and popping
// builds and unwinds a persistent linked list.
//
// ApplyFunction and PrependValue are reductive: they consume an available
// value and produce a new one without redirecting control anywhere.
// FollowBy and ConcatFollowBy are redirecting: they switch the active
// syntax to `second` and push a reductive frame (PrependValue /
// ConcatPrependValues respectively) that will run once `second` completes.
type Frame[K comparable] struct {
	kind   frameKind
	fn     func(any) any
	value  any
	prefix []any
	second *Node[K]
	next   *Frame[K]
}

// PushApplyFunction defers application of f to the next value folded
// through the chain.
func PushApplyFunction[K comparable](next *Frame[K], f func(any) any) *Frame[K] {
	return &Frame[K]{kind: kindApplyFunction, fn: f, next: next}
}

// PushPrependValue defers pairing a with whatever value the chain produces
// next, yielding the type-erased pair{a, v}.
func PushPrependValue[K comparable](next *Frame[K], a any) *Frame[K] {
	return &Frame[K]{kind: kindPrependValue, value: a, next: next}
}

// PushFollowBy redirects derivation into second; once second's value is
// available it is paired with whatever preceded this frame.
func PushFollowBy[K comparable](next *Frame[K], second *Node[K]) *Frame[K] {
	return &Frame[K]{kind: kindFollowBy, second: second, next: next}
}

// PushConcatPrependValues defers concatenating prefix with whatever []any
// the chain produces next.
func PushConcatPrependValues[K comparable](next *Frame[K], prefix []any) *Frame[K] {
	return &Frame[K]{kind: kindConcatPrependValues, prefix: prefix, next: next}
}

// PushConcatFollowBy redirects derivation into second (itself a sequence
// producer); once its []any value is available it is concatenated onto
// whatever preceded this frame.
func PushConcatFollowBy[K comparable](next *Frame[K], second *Node[K]) *Frame[K] {
	return &Frame[K]{kind: kindConcatFollowBy, second: second, next: next}
}

// FoldStack folds v through the reductive frames at the top of chain until
// either the chain is exhausted (in which case the overall result is v,
// wrapped as an immediately-nullable node so the caller can keep treating
// the return uniformly) or a redirecting frame is reached, in which case
// it returns the syntax to redirect into along with the chain continuing
// past the redirect.
func FoldStack[K comparable](chain *Frame[K], v any) (*Node[K], *Frame[K]) {
	for {
		if chain == nil {
			return &Node[K]{
				Variant:  EpsilonNode[K]{Value: v},
				analyzed: true,
				nullOK:   true,
				nullVal:  v,
				first:    map[K]struct{}{},
			}, nil
		}

		top := chain
		rest := top.next

		switch top.kind {
		case kindApplyFunction:
			v = top.fn(v)
			chain = rest
		case kindPrependValue:
			v = pair{top.value, v}
			chain = rest
		case kindConcatPrependValues:
			v = appendSeq(top.prefix, v.([]any))
			chain = rest
		case kindFollowBy:
			return top.second, PushPrependValue(rest, v)
		case kindConcatFollowBy:
			return top.second, PushConcatPrependValues(rest, v.([]any))
		}
	}
}
