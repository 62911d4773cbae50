package grammar

import "testing"

// TestPrettyRendersAlternatives verifies BNF-style rendering of a rule
// with multiple symbol shapes (terminal, non-terminal reference, epsilon).
func TestPrettyRendersAlternatives(t *testing.T) {
	g := Grammar{
		Start: 0,
		Rules: []Rule{
			{
				ID: 0,
				Alternatives: []Alternative{
					{Term("num"), NonTerm(1)},
					{Eps},
				},
			},
			{
				ID:           1,
				Alternatives: []Alternative{{Term("plus")}},
			},
		},
	}

	got := Pretty(g, nil)
	want := "N0 ::= num N1 | ε\nN1 ::= plus"
	if got != want {
		t.Errorf("Pretty mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

// TestPrettyUsesNaming verifies a supplied Naming function overrides the
// default N<id> display form.
func TestPrettyUsesNaming(t *testing.T) {
	g := Grammar{
		Rules: []Rule{{ID: 0, Alternatives: []Alternative{{Term("num")}}}},
	}
	naming := func(id int) string {
		if id == 0 {
			return "Start"
		}
		return ""
	}
	got := Pretty(g, naming)
	if got != "Start ::= num" {
		t.Errorf("expected naming override, got %q", got)
	}
}

// TestPrettyUnreachableRule verifies a rule with no alternatives at all
// (an unreachable non-terminal) renders distinctly from an epsilon rule.
func TestPrettyUnreachableRule(t *testing.T) {
	g := Grammar{Rules: []Rule{{ID: 0, Alternatives: nil}}}
	got := Pretty(g, nil)
	if got != "N0 ::= <unreachable>" {
		t.Errorf("expected unreachable rendering, got %q", got)
	}
}

// TestRuleByID verifies lookup by id, including the not-found case.
func TestRuleByID(t *testing.T) {
	g := Grammar{Rules: []Rule{{ID: 5, Alternatives: []Alternative{{Eps}}}}}
	if r, ok := g.RuleByID(5); !ok || r.ID != 5 {
		t.Errorf("expected to find rule 5, got %+v, %v", r, ok)
	}
	if _, ok := g.RuleByID(6); ok {
		t.Error("expected rule 6 to be absent")
	}
}
