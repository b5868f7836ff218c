// Package nfa compiles the small regular-expression dialect used by the
// tokenizer into a nondeterministic finite automaton and answers whole-string
// match queries against it.
//
// Supported syntax: literals, '\' escapes, '.' (any rune), '[...]' character
// sets with a-z style ranges, grouping with '(' ')', alternation '|', and the
// postfix operators '*', '+' and '?'.
//
// The automaton has one state per pattern token plus a final accepting state.
// Structural tokens are connected by epsilon edges stored in a transition
// matrix; every other token consumes exactly one rune.
package nfa

import "fmt"

// Automaton is a compiled pattern. It is immutable and safe for concurrent use.
type Automaton struct {
	pattern string
	tokens  []rune
	escaped []bool
	sets    map[int]charSet
	last    int      // accepting state
	eps     [][]bool // eps[from][to]
}

// charSet is the expanded content of a [...] token.
type charSet map[rune]struct{}

func newCharSet(content []rune) charSet {
	set := make(charSet)
	for i := 0; i < len(content); i++ {
		if i+2 < len(content) && content[i+1] == '-' {
			for r := content[i]; r <= content[i+2]; r++ {
				set[r] = struct{}{}
			}
			i += 2
			continue
		}
		set[content[i]] = struct{}{}
	}
	return set
}

func (s charSet) contains(r rune) bool {
	_, ok := s[r]
	return ok
}

// Compile parses pattern and builds its automaton.
func Compile(pattern string) (*Automaton, error) {
	a := &Automaton{pattern: pattern, sets: make(map[int]charSet)}

	src := []rune("(" + pattern + ")")
	for i := 0; i < len(src); i++ {
		r := src[i]
		switch {
		case r == '\\' && i+1 < len(src):
			i++
			a.tokens = append(a.tokens, src[i])
			a.escaped = append(a.escaped, true)
		case r == '[':
			end := indexFrom(src, ']', i+1)
			if end < 0 {
				return nil, fmt.Errorf("nfa: unclosed '[' at offset %d in %q", i-1, pattern)
			}
			a.sets[len(a.tokens)] = newCharSet(src[i+1 : end])
			a.tokens = append(a.tokens, '[')
			a.escaped = append(a.escaped, false)
			i = end
		default:
			a.tokens = append(a.tokens, r)
			a.escaped = append(a.escaped, false)
		}
	}
	a.last = len(a.tokens)

	if err := a.build(); err != nil {
		return nil, err
	}
	return a, nil
}

// MustCompile is like Compile but panics if the pattern is malformed.
// It is meant for fixed pattern tables initialised at package load.
func MustCompile(pattern string) *Automaton {
	a, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return a
}

func indexFrom(src []rune, r rune, from int) int {
	for i := from; i < len(src); i++ {
		if src[i] == r {
			return i
		}
	}
	return -1
}

// String returns the source pattern.
func (a *Automaton) String() string { return a.pattern }

// isOp reports whether token i is an unescaped structural operator.
func (a *Automaton) isOp(i int) bool {
	if a.escaped[i] {
		return false
	}
	if _, ok := a.sets[i]; ok {
		return false
	}
	switch a.tokens[i] {
	case '(', ')', '|', '*', '+', '?':
		return true
	}
	return false
}

// build fills the epsilon matrix in one left-to-right scan.
// '(' and '|' positions are kept on a stack until the matching ')'.
func (a *Automaton) build() error {
	a.eps = make([][]bool, a.last+1)
	for i := range a.eps {
		a.eps[i] = make([]bool, a.last+1)
	}

	var open []int
	for i := 0; i < a.last; i++ {
		lp := i
		op := a.isOp(i)

		switch {
		case op && (a.tokens[i] == '(' || a.tokens[i] == '|'):
			open = append(open, i)

		case op && a.tokens[i] == ')':
			var alts []int
			for len(open) > 0 && a.tokens[open[len(open)-1]] == '|' {
				alts = append(alts, open[len(open)-1])
				open = open[:len(open)-1]
			}
			if len(open) == 0 {
				return fmt.Errorf("nfa: unbalanced ')' at offset %d in %q", i-1, a.pattern)
			}
			lp = open[len(open)-1]
			open = open[:len(open)-1]

			for _, or := range alts {
				a.eps[lp][or+1] = true
				a.eps[or][i] = true
			}
		}

		if i+1 < a.last && a.isOp(i+1) {
			switch a.tokens[i+1] {
			case '*':
				a.eps[lp][i+1] = true
				a.eps[i+1][lp] = true
			case '+':
				a.eps[i+1][lp] = true
			case '?':
				a.eps[lp][i+1] = true
			}
		}

		// '|' is left out: the end of each alternative is wired to ')'.
		if op && a.tokens[i] != '|' {
			a.eps[i][i+1] = true
		}
	}

	if len(open) > 0 {
		return fmt.Errorf("nfa: unclosed '(' in %q", a.pattern)
	}
	return nil
}

// Matches reports whether the whole of text is accepted by the automaton.
func (a *Automaton) Matches(text string) bool {
	current := a.closure([]int{0})

	for _, r := range text {
		var next []int
		for _, s := range current {
			if s < a.last && !a.isOp(s) && a.accepts(s, r) {
				next = append(next, s+1)
			}
		}
		if len(next) == 0 {
			return false
		}
		current = a.closure(next)
	}

	for _, s := range current {
		if s == a.last {
			return true
		}
	}
	return false
}

// accepts reports whether the consuming token at state s matches r.
func (a *Automaton) accepts(s int, r rune) bool {
	if set, ok := a.sets[s]; ok {
		return set.contains(r)
	}
	if !a.escaped[s] && a.tokens[s] == '.' {
		return true
	}
	return a.tokens[s] == r
}

// closure returns every state reachable from states over epsilon edges,
// including states themselves.
func (a *Automaton) closure(states []int) []int {
	seen := make([]bool, a.last+1)
	stack := make([]int, 0, len(states))
	result := make([]int, 0, len(states))
	for _, s := range states {
		if !seen[s] {
			seen[s] = true
			stack = append(stack, s)
			result = append(result, s)
		}
	}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for t, ok := range a.eps[s] {
			if ok && !seen[t] {
				seen[t] = true
				stack = append(stack, t)
				result = append(result, t)
			}
		}
	}
	return result
}
