// Package grammar is the target shape of a grammar extracted from a
// syntax graph: a finite set of BNF-style rules of alternatives of
// symbols, plus a printer for it. It carries no dependency on pkg/syntax
// so it can also be built or rendered independently.
package grammar

import (
	"fmt"
	"strings"
)

// SymbolKind distinguishes the three shapes a Symbol can take.
type SymbolKind int

const (
	SymTerminal SymbolKind = iota
	SymNonTerminal
	SymEpsilon
)

// Symbol is one element of an Alternative: a terminal (identified by its
// kind's printed form), a reference to another rule by id, or epsilon.
type Symbol struct {
	kind        SymbolKind
	terminal    string
	nonTerminal int
}

// Term builds a terminal symbol, printed using the given representation of
// its token kind.
func Term(printedKind string) Symbol {
	return Symbol{kind: SymTerminal, terminal: printedKind}
}

// NonTerm builds a reference to the rule with the given id.
func NonTerm(id int) Symbol {
	return Symbol{kind: SymNonTerminal, nonTerminal: id}
}

// Eps is the epsilon symbol, matching the empty stream explicitly.
var Eps = Symbol{kind: SymEpsilon}

// Kind reports which shape the symbol has.
func (s Symbol) Kind() SymbolKind { return s.kind }

// Terminal returns the symbol's printed terminal form. Valid only when
// Kind() == SymTerminal.
func (s Symbol) Terminal() string { return s.terminal }

// NonTerminalID returns the referenced rule id. Valid only when
// Kind() == SymNonTerminal.
func (s Symbol) NonTerminalID() int { return s.nonTerminal }

func (s Symbol) String() string {
	switch s.kind {
	case SymTerminal:
		return s.terminal
	case SymNonTerminal:
		return fmt.Sprintf("N%d", s.nonTerminal)
	case SymEpsilon:
		return "ε" // ε
	default:
		return "?"
	}
}

// Alternative is one right-hand side of a rule: a sequence of symbols. A
// nil or empty Alternative represents "no symbols, no epsilon" — the
// degenerate alternative contributed by an embedded Failure.
type Alternative []Symbol

// Rule is one non-terminal's complete set of alternatives. A Rule with no
// Alternatives at all is an unreachable non-terminal, produced when
// extraction encounters a top-level Failure.
type Rule struct {
	ID           int
	Alternatives []Alternative
}

// Grammar is the fully extracted, finite BNF grammar for a syntax graph.
type Grammar struct {
	Rules []Rule
	Start int
}

// RuleByID looks up a rule by id, for use by a Naming function or a
// caller rendering a single rule on demand.
func (g Grammar) RuleByID(id int) (Rule, bool) {
	for _, r := range g.Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// Naming supplies a display name for a non-terminal id; Pretty falls back
// to "N<id>" (via Symbol.String) if naming is nil or returns "".
type Naming func(id int) string

// Pretty renders g as BNF-style lines, one per rule, in rule order.
func Pretty(g Grammar, naming Naming) string {
	lines := make([]string, 0, len(g.Rules))
	for _, r := range g.Rules {
		name := displayName(r.ID, naming)
		lines = append(lines, fmt.Sprintf("%s ::= %s", name, formatAlternatives(r.Alternatives, naming)))
	}
	return strings.Join(lines, "\n")
}

func displayName(id int, naming Naming) string {
	if naming != nil {
		if name := naming(id); name != "" {
			return name
		}
	}
	return NonTerm(id).String()
}

func formatAlternatives(alts []Alternative, naming Naming) string {
	if len(alts) == 0 {
		return "<unreachable>"
	}
	parts := make([]string, len(alts))
	for i, alt := range alts {
		parts[i] = formatAlternative(alt, naming)
	}
	return strings.Join(parts, " | ")
}

func formatAlternative(alt Alternative, naming Naming) string {
	if len(alt) == 0 {
		return "<empty>"
	}
	parts := make([]string, len(alt))
	for i, sym := range alt {
		if sym.Kind() == SymNonTerminal {
			parts[i] = displayName(sym.NonTerminalID(), naming)
		} else {
			parts[i] = sym.String()
		}
	}
	return strings.Join(parts, " ")
}
