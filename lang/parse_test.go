package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseString_Namespaces(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single namespace",
			input: "@ns:\n    $x := 1",
			want:  []string{"ns"},
		},
		{
			name:  "multiple namespaces",
			input: "@a:\n    $x := 1\n@b:\n    $y := 2\n@c:\n",
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "empty namespace",
			input: "@empty:",
			want:  []string{"empty"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "comments only",
			input: "# nothing here\n# at all\n",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if len(doc.Namespaces) != len(tt.want) {
				t.Fatalf("expected %d namespaces, got %d",
					len(tt.want), len(doc.Namespaces))
			}

			for i, name := range tt.want {
				if doc.Namespaces[i].Name != name {
					t.Errorf("namespace %d: expected %q, got %q",
						i, name, doc.Namespaces[i].Name)
				}
			}
		})
	}
}

func TestParseString_Values(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // source form of the parsed value
	}{
		{name: "string", input: `$v := "hi"`, want: `"hi"`},
		{name: "single quoted string", input: `$v := 'hi'`, want: `"hi"`},
		{name: "integer", input: `$v := 42`, want: "42"},
		{name: "negative integer", input: `$v := -42`, want: "-42"},
		{name: "float", input: `$v := 3.14`, want: "3.14"},
		{name: "binary", input: `$v := 0b1010`, want: "0b1010"},
		{name: "negative binary", input: `$v := -0b101`, want: "-0b101"},
		{name: "hexadecimal", input: `$v := 0xff`, want: "0xFF"},
		{name: "negative hexadecimal", input: `$v := -0x1a`, want: "-0x1A"},
		{name: "boolean true", input: `$v := True`, want: "true"},
		{name: "boolean false", input: `$v := false`, want: "false"},
		{name: "nil", input: `$v := Nil`, want: "Nil"},
		{name: "empty list", input: `$v := []`, want: "[]"},
		{name: "flat list", input: `$v := [1, 2, 3]`, want: "[1, 2, 3]"},
		{
			name:  "nested list",
			input: `$v := [1, [2, 3], [4, [5, 6]]]`,
			want:  "[1, [2, 3], [4, [5, 6]]]",
		},
		{
			name:  "mixed list",
			input: `$v := ["a", 1, 2.5, True, Nil]`,
			want:  `["a", 1, 2.5, true, Nil]`,
		},
		{
			name:  "external reference",
			input: `$v := &ns.var`,
			want:  "&ns.var",
		},
		{name: "local reference", input: `$v := %var`, want: "%var"},
		{
			name:  "reference with accessors",
			input: `$v := &ns.list->(0)->(1..3)->[key]`,
			want:  "&ns.list->(0)->(1..3)->[key]",
		},
		{
			name:  "intrinsic call",
			input: `$v := [std_add_int!!, 10, 20]`,
			want:  "[std_add_int!!, 10, 20]",
		},
		{
			name:  "nested intrinsic call",
			input: `$v := [std_add_int!!, [std_mul_int!!, 2, 3], 4]`,
			want:  "[std_add_int!!, [std_mul_int!!, 2, 3], 4]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(
				context.Background(),
				"@t:\n    "+tt.input,
			)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			v, ok := doc.Namespaces[0].Lookup("v")
			if !ok {
				t.Fatal("variable v not found")
			}

			if got := v.Value.Quote(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseString_SignedRadixLiterals(t *testing.T) {
	// The sign ahead of a base prefix must negate the parsed magnitude, and
	// the declared base must survive the round trip.
	tests := []struct {
		name      string
		input     string
		want      int64
		wantQuote string
	}{
		{name: "negative binary", input: `$v := -0b101`, want: -5, wantQuote: "-0b101"},
		{name: "negative hexadecimal", input: `$v := -0xA`, want: -10, wantQuote: "-0xA"},
		{name: "positive binary", input: `$v := 0b101`, want: 5, wantQuote: "0b101"},
		{name: "positive hexadecimal", input: `$v := 0xA`, want: 10, wantQuote: "0xA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(
				context.Background(),
				"@t:\n    "+tt.input,
			)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			v, ok := doc.Namespaces[0].Lookup("v")
			if !ok {
				t.Fatal("variable v not found")
			}

			i, ok := v.Value.AsInteger()
			if !ok {
				t.Fatalf("expected integer, got %s", v.Value.Type())
			}

			if i != tt.want {
				t.Errorf("expected %d, got %d", tt.want, i)
			}

			if got := v.Value.Quote(); got != tt.wantQuote {
				t.Errorf("expected %s, got %s", tt.wantQuote, got)
			}
		})
	}
}

func TestParseString_DeeplyNestedList(t *testing.T) {
	// Nesting far beyond any recursive parser's comfort. The list parser
	// uses an explicit stack, so this must succeed.
	const depth = 100000

	input := "@t:\n    $v := " +
		strings.Repeat("[", depth) + "1" + strings.Repeat("]", depth)

	doc, err := ParseString(context.Background(), input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	v, _ := doc.Namespaces[0].Lookup("v")

	for range depth - 1 {
		if v.Value.Type() != TypeList || v.Value.Len() != 1 {
			t.Fatal("unexpected shape in nested list")
		}

		v = &Variable{Value: v.Value.Item(0)}
	}
}

func TestParseString_DuplicateVariableLastWins(t *testing.T) {
	input := "@t:\n    $x := 1\n    $y := 2\n    $x := 3"

	doc, err := ParseString(context.Background(), input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	ns := doc.Namespaces[0]

	if len(ns.Variables) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(ns.Variables))
	}

	// The rebound variable keeps its original enumeration position.
	if ns.Variables[0].Name != "x" || ns.Variables[1].Name != "y" {
		t.Errorf("unexpected variable order: %q, %q",
			ns.Variables[0].Name, ns.Variables[1].Name)
	}

	x, _ := ns.Lookup("x")
	if got, _ := x.Value.AsInteger(); got != 3 {
		t.Errorf("expected last assignment to win, got %d", got)
	}
}

func TestParseString_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{
			name:  "variable before namespace",
			input: "$x := 1",
			err:   ErrParse,
		},
		{
			name:  "missing assignment",
			input: "@t:\n    $x 1",
			err:   ErrParse,
		},
		{
			name:  "missing value",
			input: "@t:\n    $x :=",
			err:   ErrParse,
		},
		{
			name:  "unclosed list",
			input: "@t:\n    $x := [1, 2",
			err:   ErrParse,
		},
		{
			name:  "trailing comma",
			input: "@t:\n    $x := [1, 2,]",
			err:   ErrParse,
		},
		{
			name:  "missing comma",
			input: "@t:\n    $x := [1 2]",
			err:   ErrParse,
		},
		{
			name:  "leading comma",
			input: "@t:\n    $x := [, 1]",
			err:   ErrParse,
		},
		{
			name:  "intrinsic outside list",
			input: "@t:\n    $x := std_add_int!!",
			err:   ErrParse,
		},
		{
			name:  "intrinsic not first in list",
			input: "@t:\n    $x := [1, std_add_int!!, 2]",
			err:   ErrParse,
		},
		{
			name:  "unterminated string",
			input: "@t:\n    $x := \"oops",
			err:   ErrLex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(context.Background(), tt.input)
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}

			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestParseString_RoundTrip(t *testing.T) {
	input := "@server:\n" +
		"    $host := \"localhost\"\n" +
		"    $port := 8080\n" +
		"    $ratio := 0.75\n" +
		"    $debug := false\n" +
		"    $tags := [\"a\", \"b\", [\"c\", 1]]\n" +
		"\n" +
		"@client:\n" +
		"    $endpoint := &server.host\n" +
		"    $mask := 0b1010\n" +
		"    $magic := 0xCAFE\n"

	doc, err := ParseString(context.Background(), input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	rendered := doc.String()
	if rendered != input {
		t.Errorf("canonical form differs from input:\n%s", rendered)
	}

	again, err := ParseString(context.Background(), rendered)
	if err != nil {
		t.Fatalf("reparse error: %v", err)
	}

	if again.String() != rendered {
		t.Error("round trip is not a fixed point")
	}
}

func TestParseReader(t *testing.T) {
	doc, err := ParseReader(
		context.Background(),
		strings.NewReader("@t:\n    $x := 1"),
	)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if len(doc.Namespaces) != 1 {
		t.Fatalf("expected 1 namespace, got %d", len(doc.Namespaces))
	}
}

func TestSnippet(t *testing.T) {
	input := "@t:\n    $x 1"

	_, err := ParseString(context.Background(), input)
	if err == nil {
		t.Fatal("expected parse error")
	}

	snippet := Snippet(err, input)
	if snippet == "" {
		t.Fatal("expected a source snippet")
	}

	if !strings.Contains(snippet, "$x 1") {
		t.Errorf("snippet missing source line:\n%s", snippet)
	}

	if !strings.Contains(snippet, "^") {
		t.Errorf("snippet missing caret:\n%s", snippet)
	}
}
