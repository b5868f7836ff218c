package nfa

import "testing"

func TestMatches(t *testing.T) {
	tests := []struct {
		pattern string
		text    string
		want    bool
	}{
		{"abc", "abc", true},
		{"abc", "ab", false},
		{"abc", "abcd", false},
		{"", "", true},
		{"", "a", false},

		// alternation
		{"a|b", "a", true},
		{"a|b", "b", true},
		{"a|b", "ab", false},
		{"if|else|while", "else", true},
		{"if|else|while", "ifelse", false},
		{"(ab)|(cd)", "cd", true},
		{"(ab)|(cd)", "ac", false},

		// closures
		{"a*", "", true},
		{"a*", "aaaa", true},
		{"a*b", "aaab", true},
		{"a*b", "aaa", false},
		{"a+", "", false},
		{"a+", "aaa", true},
		{"ab?c", "ac", true},
		{"ab?c", "abc", true},
		{"ab?c", "abbc", false},
		{"(ab)*", "ababab", true},
		{"(ab)*", "aba", false},
		{"(a|b)+c", "abbac", true},

		// wildcard and escapes
		{"a.c", "axc", true},
		{"a.c", "ac", false},
		{`a\.c`, "a.c", true},
		{`a\.c`, "axc", false},
		{`\+`, "+", true},
		{`\|\|`, "||", true},
		{`\|\|`, "|", false},
		{`\(`, "(", true},

		// character sets
		{"[a-z]", "q", true},
		{"[a-z]", "Q", false},
		{"[_a-zA-Z][_a-zA-Z0-9]*", "_tmp9", true},
		{"[_a-zA-Z][_a-zA-Z0-9]*", "9tmp", false},
		{"[0-9][0-9]*", "2048", true},
		{"[xyz]", "y", true},
		{"[xyz]", "w", false},

		// the tokenizer's float rule
		{`([0-9]+\.[0-9]*)|([0-9]*\.[0-9]+)`, "3.14", true},
		{`([0-9]+\.[0-9]*)|([0-9]*\.[0-9]+)`, "3.", true},
		{`([0-9]+\.[0-9]*)|([0-9]*\.[0-9]+)`, ".5", true},
		{`([0-9]+\.[0-9]*)|([0-9]*\.[0-9]+)`, ".", false},
		{`([0-9]+\.[0-9]*)|([0-9]*\.[0-9]+)`, "12", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.text, func(t *testing.T) {
			a, err := Compile(tt.pattern)
			if err != nil {
				t.Fatalf("Compile(%q) failed: %v", tt.pattern, err)
			}
			if got := a.Matches(tt.text); got != tt.want {
				t.Errorf("Compile(%q).Matches(%q) = %v, want %v", tt.pattern, tt.text, got, tt.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
	}{
		{"Unclosed Set", "[a-z"},
		{"Stray Close Paren", "a)"},
		{"Unclosed Group", "(ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(tt.pattern); err == nil {
				t.Errorf("Compile(%q) succeeded, want error", tt.pattern)
			}
		})
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile did not panic on a malformed pattern")
		}
	}()
	MustCompile("[abc")
}

func TestAutomatonReuse(t *testing.T) {
	a := MustCompile("free|final|fun")
	for i := 0; i < 3; i++ {
		if !a.Matches("final") {
			t.Fatalf("run %d: expected match", i)
		}
		if a.Matches("fin") {
			t.Fatalf("run %d: unexpected prefix match", i)
		}
	}
	if a.String() != "free|final|fun" {
		t.Errorf("String() = %q", a.String())
	}
}

func BenchmarkMatchIdentifier(b *testing.B) {
	a := MustCompile("[_a-zA-Z][_a-zA-Z0-9]*")
	for i := 0; i < b.N; i++ {
		a.Matches("some_longer_identifier42")
	}
}
