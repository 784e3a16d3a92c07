package compiler

import (
	"strings"
	"testing"
)

func TestCompileSimpleProgramProducesAssembly(t *testing.T) {
	src := `
int main(void) {
	int x;
	x = 2 + 3;
	return x;
}
`
	res := Compile("simple.c-", src)
	if res.Diags.HasErrors() {
		t.Fatalf("unexpected diagnostics for a clean program")
	}
	if !strings.Contains(res.Assembly, "main:\n") {
		t.Fatalf("expected a main label in the output:\n%s", res.Assembly)
	}
	if !strings.Contains(res.Assembly, ".text") {
		t.Fatalf("expected a text section in the output:\n%s", res.Assembly)
	}
}

func TestCompileArrayProgramProducesAssembly(t *testing.T) {
	src := `
int arr[5];

int main(void) {
	int i;
	i = 0;
	arr[i] = 42;
	return arr[i];
}
`
	res := Compile("array.c-", src)
	if res.Diags.HasErrors() {
		t.Fatalf("unexpected diagnostics for a clean program")
	}
	if !strings.Contains(res.Assembly, ".data") {
		t.Fatalf("expected a data section for the global array:\n%s", res.Assembly)
	}
	if !strings.Contains(res.Assembly, "arr") {
		t.Fatalf("expected the array's label in the output:\n%s", res.Assembly)
	}
}

func TestCompileSyntaxErrorReportsDiagnosticAndNoAssembly(t *testing.T) {
	src := `
int main(void) {
	int x
	return x;
}
`
	res := Compile("bad.c-", src)
	if !res.Diags.HasErrors() {
		t.Fatalf("expected a diagnostic for the missing semicolon")
	}
	if res.Assembly != "" {
		t.Fatalf("expected no assembly output after a syntax error, got:\n%s", res.Assembly)
	}
}

func TestCompileRecursiveCallProducesAssembly(t *testing.T) {
	src := `
int fact(int n) {
	if (n < 2) {
		return 1;
	}
	return n * fact(n - 1);
}

int main(void) {
	return fact(5);
}
`
	res := Compile("fact.c-", src)
	if res.Diags.HasErrors() {
		t.Fatalf("unexpected diagnostics for a clean program")
	}
	if !strings.Contains(res.Assembly, "jal\tfact\n") {
		t.Fatalf("expected a recursive call to fact:\n%s", res.Assembly)
	}
}
