package compiler

import "testing"

// simpleSource is a minimal program used for benchmarking the fast path.
const simpleSource = `
fun add(a int, b int) int {
	return a + b;
}

x int = add(3, 4);
writeln(x);
`

// complexSource is a larger program exercising records, arrays, loops and
// recursive function calls.
const complexSource = `
Point rec {
	x int;
	y int;
}

fun absVal(n int) int {
	if (n < 0) {
		return -n;
	}
	return n;
}

fun sumArray(arr int[], n int) int {
	total int = 0;
	i int = 0;
	while (i < n) {
		total = total + arr[i];
		i = i + 1;
	}
	return total;
}

fun dotProduct(a int[], b int[], n int) int {
	result int = 0;
	i int = 0;
	for (i, 0, n - 1, 1) {
		result = result + (a[i] * b[i]);
	}
	return result;
}

fun fib(n int) int {
	if (n == 0) { return 0; }
	if (n == 1) { return 1; }
	return fib(n - 1) + fib(n - 2);
}

fun maxInArray(arr int[], n int) int {
	best int = arr[0];
	i int = 1;
	do {
		if (arr[i] > best) {
			best = arr[i];
		}
		i = i + 1;
	} while (i < n);
	return best;
}

fun manhattan(p Point, q Point) int {
	return absVal(p.x - q.x) + absVal(p.y - q.y);
}

arr int[] = array [8] of int;
arr[0] = 3;
arr[1] = 1;
arr[2] = 4;
arr[3] = 1;
arr[4] = 5;
arr[5] = 9;
arr[6] = 2;
arr[7] = 6;

s int = sumArray(arr, 8);
m int = maxInArray(arr, 8);
f int = fib(8);
a int = absVal(-42);

vecA int[] = array [4] of int;
vecB int[] = array [4] of int;
vecA[0] = 1; vecA[1] = 2; vecA[2] = 3; vecA[3] = 4;
vecB[0] = 4; vecB[1] = 3; vecB[2] = 2; vecB[3] = 1;
dp int = dotProduct(vecA, vecB, 4);

d int = manhattan(Point(1, 2), Point(4, 6));
writeln(s + m + f + a + dp + d);
`

//  Lex benchmarks

func BenchmarkLex_Simple(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Lex(simpleSource); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLex_Complex(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Lex(complexSource); err != nil {
			b.Fatal(err)
		}
	}
}

//  Parse benchmarks (lexing included, the parser pulls symbols on demand)

func BenchmarkParse_Simple(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(simpleSource); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParse_Complex(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(complexSource); err != nil {
			b.Fatal(err)
		}
	}
}

//  Analyze benchmarks
// The AST is parsed outside the timed region. Analyze resets its state, so
// one tree can be checked repeatedly.

func BenchmarkAnalyze_Simple(b *testing.B) {
	root, err := Parse(simpleSource)
	if err != nil {
		b.Fatal(err)
	}
	a := NewAnalyzer()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := a.Analyze(root); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAnalyze_Complex(b *testing.B) {
	root, err := Parse(complexSource)
	if err != nil {
		b.Fatal(err)
	}
	a := NewAnalyzer()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := a.Analyze(root); err != nil {
			b.Fatal(err)
		}
	}
}

//  Full pipeline benchmarks

func BenchmarkCompile_Simple(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Compile(simpleSource); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompile_Complex(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Compile(complexSource); err != nil {
			b.Fatal(err)
		}
	}
}

// TestBenchmarkSourcesCompile keeps the benchmark inputs valid.
func TestBenchmarkSourcesCompile(t *testing.T) {
	for name, src := range map[string]string{"simple": simpleSource, "complex": complexSource} {
		if _, err := Compile(src); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
