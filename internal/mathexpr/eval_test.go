package mathexpr

import (
	"errors"
	"testing"
)

func TestEvalArithmetic(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"2+2*3", "8"},
		{"(2+2)*3", "12"},
		{"10-4/2", "8"},
		{"2**3", "8"},
		{"2**3**2", "512"}, // right-associative
		{"-2**2", "-4"},
		{"2**-1", "0.5"},
		{"2*-3", "-6"},
		{"2--3", "5"},
		{"1.5*2", "3"},
		{"  7 + 1 ", "8"},
		{"((3))", "3"},
	}

	for _, tc := range cases {
		got, err := Eval(tc.expr)
		if err != nil {
			t.Fatalf("Eval(%q) error = %v", tc.expr, err)
		}
		if Format(got) != tc.want {
			t.Fatalf("Eval(%q) = %s, want %s", tc.expr, Format(got), tc.want)
		}
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	for _, expr := range []string{"5/0", "1/(2-2)", "5/0+1"} {
		_, err := Eval(expr)
		if !errors.Is(err, ErrDivideByZero) {
			t.Fatalf("Eval(%q) error = %v, want ErrDivideByZero", expr, err)
		}
	}
}

func TestEvalDisallowedCharacters(t *testing.T) {
	for _, expr := range []string{"2+x", "import os", "len(1)", "2^3", "1;2", "__builtins__"} {
		_, err := Eval(expr)
		if !errors.Is(err, ErrDisallowedChar) {
			t.Fatalf("Eval(%q) error = %v, want ErrDisallowedChar", expr, err)
		}
	}
}

func TestEvalSyntaxErrors(t *testing.T) {
	for _, expr := range []string{"", "   ", "2+", "(2", "2)", "*3", "2**", "."} {
		if _, err := Eval(expr); err == nil {
			t.Fatalf("Eval(%q) should fail", expr)
		}
	}
}
