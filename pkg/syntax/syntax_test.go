package syntax

import (
	"reflect"
	"testing"
)

// TestConcatConcatenates verifies that Concat joins two []E syntaxes'
// nullable values end to end.
func TestConcatConcatenates(t *testing.T) {
	l := Epsilon[[]int, string]([]int{1, 2})
	r := Epsilon[[]int, string]([]int{3})
	cat := Concat[int, string](l, r)

	val, ok := cat.Node().Nullable()
	if !ok {
		t.Fatal("expected concatenation of two nullable sequences to be nullable")
	}
	if !reflect.DeepEqual(val.([]int), []int{1, 2, 3}) {
		t.Errorf("expected [1 2 3], got %v", val)
	}
}

// TestEpsilonIsNullable verifies that Epsilon always reports nullable
// with its constructed value and an empty FIRST set.
func TestEpsilonIsNullable(t *testing.T) {
	s := Epsilon[int, string](7)
	val, ok := s.Node().Nullable()
	if !ok {
		t.Fatal("expected Epsilon to be nullable")
	}
	if val.(int) != 7 {
		t.Errorf("expected nullable value 7, got %v", val)
	}
	if len(s.Node().First()) != 0 {
		t.Errorf("expected empty FIRST set, got %v", s.Node().First())
	}
}

// TestElemIsNotNullable verifies that Elem is never nullable and its
// FIRST set is exactly its own kind.
func TestElemIsNotNullable(t *testing.T) {
	s := Elem[string, string]("num")
	if _, ok := s.Node().Nullable(); ok {
		t.Fatal("expected Elem to not be nullable")
	}
	first := s.Node().First()
	if len(first) != 1 {
		t.Fatalf("expected FIRST set of size 1, got %v", first)
	}
	if _, ok := first["num"]; !ok {
		t.Errorf("expected FIRST set to contain %q, got %v", "num", first)
	}
}

// TestFailureNeverAccepts verifies that Failure is never nullable and has
// an empty FIRST set.
func TestFailureNeverAccepts(t *testing.T) {
	s := Failure[int, string]()
	if _, ok := s.Node().Nullable(); ok {
		t.Fatal("expected Failure to never be nullable")
	}
	if len(s.Node().First()) != 0 {
		t.Errorf("expected empty FIRST set, got %v", s.Node().First())
	}
}

// TestSequenceCombinesFirstAndNullable verifies FIRST(l ~ r) = FIRST(l)
// when l is not nullable, and that both sides must be nullable for the
// sequence itself to be nullable.
func TestSequenceCombinesFirstAndNullable(t *testing.T) {
	l := Elem[string, string]("a")
	r := Elem[string, string]("b")
	seq := Sequence[string, string, string](l, r)

	if _, ok := seq.Node().Nullable(); ok {
		t.Fatal("expected sequence of two non-nullable elements to not be nullable")
	}
	first := seq.Node().First()
	if len(first) != 1 {
		t.Fatalf("expected FIRST set of size 1, got %v", first)
	}
	if _, ok := first["a"]; !ok {
		t.Errorf("expected FIRST set to contain %q, got %v", "a", first)
	}
}

// TestSequenceFirstIncludesRightWhenLeftNullable verifies that when l is
// nullable, FIRST(l ~ r) includes FIRST(r) too, while the sequence as a
// whole stays non-nullable since r is not.
func TestSequenceFirstIncludesRightWhenLeftNullable(t *testing.T) {
	l := Epsilon[string, string]("")
	r := Elem[string, string]("b")
	seq := Sequence[string, string, string](l, r)

	val, ok := seq.Node().Nullable()
	if ok {
		t.Fatalf("expected sequence to not be nullable since right is not, got %v", val)
	}
	first := seq.Node().First()
	if _, ok := first["b"]; !ok {
		t.Errorf("expected FIRST set to contain %q, got %v", "b", first)
	}
}

// TestSequenceBothNullableProducesPair verifies the Pair value shape and
// that a sequence of two nullable parts is itself nullable.
func TestSequenceBothNullableProducesPair(t *testing.T) {
	l := Epsilon[int, string](1)
	r := Epsilon[string, string]("x")
	seq := Sequence[int, string, string](l, r)

	val, ok := seq.Node().Nullable()
	if !ok {
		t.Fatal("expected sequence of two nullable parts to be nullable")
	}
	p := val.(Pair[int, string])
	if p.First != 1 || p.Second != "x" {
		t.Errorf("expected Pair{1, \"x\"}, got %+v", p)
	}
}

// TestDisjunctionPrefersLeftWhenBothNullable verifies the left-biased
// tie-break for ambiguous-but-tolerated nullable disjunctions.
func TestDisjunctionPrefersLeftWhenBothNullable(t *testing.T) {
	l := Epsilon[string, string]("left")
	r := Epsilon[string, string]("right")
	d := Disjunction[string, string](l, r)

	val, ok := d.Node().Nullable()
	if !ok {
		t.Fatal("expected disjunction of two nullable syntaxes to be nullable")
	}
	if val.(string) != "left" {
		t.Errorf("expected left-biased value %q, got %v", "left", val)
	}
}

// TestDisjunctionUnionsFirstSets verifies FIRST(l | r) = FIRST(l) ∪ FIRST(r).
func TestDisjunctionUnionsFirstSets(t *testing.T) {
	l := Elem[string, string]("a")
	r := Elem[string, string]("b")
	d := Disjunction[string, string](l, r)

	first := d.Node().First()
	if len(first) != 2 {
		t.Fatalf("expected FIRST set of size 2, got %v", first)
	}
	for _, k := range []string{"a", "b"} {
		if _, ok := first[k]; !ok {
			t.Errorf("expected FIRST set to contain %q, got %v", k, first)
		}
	}
}

// TestMapIsTransparentToFirstAndNullable verifies that Map changes the
// value but never nullability or FIRST.
func TestMapIsTransparentToFirstAndNullable(t *testing.T) {
	inner := Epsilon[int, string](3)
	mapped := Map(inner, func(v int) string {
		if v == 3 {
			return "three"
		}
		return "other"
	})

	val, ok := mapped.Node().Nullable()
	if !ok {
		t.Fatal("expected mapped syntax to stay nullable")
	}
	if val.(string) != "three" {
		t.Errorf("expected mapped value %q, got %v", "three", val)
	}
	if len(mapped.Node().First()) != len(inner.Node().First()) {
		t.Errorf("expected FIRST set %v, got %v", inner.Node().First(), mapped.Node().First())
	}
}

// TestRecursiveResolvesOnce verifies that a Recursive syntax's build
// function materializes its inner syntax exactly once, even across
// repeated First/Nullable queries.
func TestRecursiveResolvesOnce(t *testing.T) {
	calls := 0
	self := Recursive(func(s Syntax[string, string]) Syntax[string, string] {
		calls++
		nested := Sequence[string, string, string](Elem[string, string]("paren"), s)
		combined := Map(nested, func(p Pair[string, string]) string { return p.First + p.Second })
		return Disjunction(Epsilon[string, string]("base"), combined)
	})

	_, _ = self.Node().Nullable()
	_ = self.Node().First()
	_, _ = self.Node().Nullable()

	if calls != 1 {
		t.Errorf("expected build to be invoked exactly once, got %d", calls)
	}
}
