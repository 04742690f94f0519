package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/ardnew/vtc/lang"
)

// eval loads a single-variable source and resolves it.
func eval(t *testing.T, expr string) (*lang.Value, error) {
	t.Helper()

	r := load(t, "@t:\n    $v := "+expr+"\n")

	return r.Get("t", "v")
}

func TestIntrinsic_Arithmetic(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{name: "add int", expr: "[std_add_int!!, 10, 20]", want: "30"},
		{name: "sub int", expr: "[std_sub_int!!, 10, 20]", want: "-10"},
		{name: "mul int", expr: "[std_mul_int!!, 6, 7]", want: "42"},
		{name: "div int", expr: "[std_div_int!!, 7, 2]", want: "3"},
		{name: "mod int", expr: "[std_mod_int!!, 7, 2]", want: "1"},
		{name: "add float", expr: "[std_add_float!!, 1.5, 2.25]", want: "3.75"},
		{name: "sub float", expr: "[std_sub_float!!, 1.5, 0.5]", want: "1.0"},
		{name: "mul float", expr: "[std_mul_float!!, 1.5, 2.0]", want: "3.0"},
		{name: "div float", expr: "[std_div_float!!, 1.0, 4.0]", want: "0.25"},
		{name: "int to float", expr: "[std_int_to_float!!, 3]", want: "3.0"},
		{name: "float to int", expr: "[std_float_to_int!!, 3.9]", want: "3"},
		{
			name: "nested call",
			expr: "[std_add_int!!, [std_mul_int!!, 2, 3], 4]",
			want: "10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := eval(t, tt.expr)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if got := v.Quote(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestIntrinsic_Comparisons(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{name: "eq true", expr: "[std_eq!!, 1, 1]", want: true},
		{name: "eq false", expr: "[std_eq!!, 1, 2]", want: false},
		{name: "eq strings", expr: `[std_eq!!, "a", "a"]`, want: true},
		{name: "lt int", expr: "[std_lt!!, 1, 2]", want: true},
		{name: "lt float", expr: "[std_lt!!, 2.5, 1.5]", want: false},
		{name: "lt string", expr: `[std_lt!!, "a", "b"]`, want: true},
		{name: "gt int", expr: "[std_gt!!, 2, 1]", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := eval(t, tt.expr)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if got, _ := v.AsBoolean(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIntrinsic_Bitwise(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want int64
	}{
		{name: "and", expr: "[std_bitwise_and!!, 0b1100, 0b1010]", want: 0b1000},
		{name: "or", expr: "[std_bitwise_or!!, 0b1100, 0b1010]", want: 0b1110},
		{name: "xor", expr: "[std_bitwise_xor!!, 0b1100, 0b1010]", want: 0b0110},
		{name: "not", expr: "[std_bitwise_not!!, 0]", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := eval(t, tt.expr)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if got, _ := v.AsInteger(); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestIntrinsic_Strings(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{name: "uppercase", expr: `[std_to_uppercase!!, "abc"]`, want: "ABC"},
		{name: "lowercase", expr: `[std_to_lowercase!!, "ABC"]`, want: "abc"},
		{
			name: "substring",
			expr: `[std_substring!!, "hello", 1, 4]`,
			want: "ell",
		},
		{
			name: "concat",
			expr: `[std_concat!!, "a", "b", "c"]`,
			want: "abc",
		},
		{
			name: "replace",
			expr: `[std_replace!!, "a-b-c", "-", "+"]`,
			want: "a+b+c",
		},
		{
			name: "base64 encode",
			expr: `[std_base64_encode!!, "hi"]`,
			want: "aGk=",
		},
		{
			name: "base64 decode",
			expr: `[std_base64_decode!!, "aGk="]`,
			want: "hi",
		},
		{
			name: "sha256 hash",
			expr: `[std_hash!!, "abc", "sha256"]`,
			want: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := eval(t, tt.expr)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if got, _ := v.AsString(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIntrinsic_If(t *testing.T) {
	v, err := eval(t, `[std_if!!, True, "yes", "no"]`)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if got, _ := v.AsString(); got != "yes" {
		t.Errorf("expected yes, got %q", got)
	}

	v, err = eval(t, `[std_if!!, [std_lt!!, 2, 1], "yes", "no"]`)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if got, _ := v.AsString(); got != "no" {
		t.Errorf("expected no, got %q", got)
	}
}

func TestIntrinsic_Try(t *testing.T) {
	// First argument resolves, so the fallback is ignored.
	r := load(t, "@t:\n"+
		"    $present := 1\n"+
		"    $ok := [std_try!!, %present, 99]\n"+
		"    $fallback := [std_try!!, %absent, 99]\n"+
		"    $failing := [std_try!!, [std_div_int!!, 1, 0], -1]\n")

	if got, err := r.GetInteger("t", "ok"); err != nil || got != 1 {
		t.Errorf("try success: got %d, %v", got, err)
	}

	if got, err := r.GetInteger("t", "fallback"); err != nil || got != 99 {
		t.Errorf("try fallback: got %d, %v", got, err)
	}

	if got, err := r.GetInteger("t", "failing"); err != nil || got != -1 {
		t.Errorf("try failing call: got %d, %v", got, err)
	}
}

func TestIntrinsic_Eval(t *testing.T) {
	source := "@math:\n" +
		"    $x := 6\n" +
		"    $y := 7\n" +
		"    $product := [std_eval!!, \"math.x * math.y\"]\n" +
		"    $phrase := [std_eval!!, \"upper('go')\"]\n" +
		"    $broken := [std_eval!!, \"math.x +\"]\n"

	r := load(t, source)

	if got, err := r.GetInteger("math", "product"); err != nil || got != 42 {
		t.Errorf("std_eval arithmetic: got %d, %v", got, err)
	}

	if got, err := r.GetString("math", "phrase"); err != nil || got != "GO" {
		t.Errorf("std_eval builtin: got %q, %v", got, err)
	}

	if _, err := r.Get("math", "broken"); !errors.Is(err, ErrEval) {
		t.Errorf("std_eval compile failure: expected ErrEval, got %v", err)
	}
}

func TestRuntime_Eval(t *testing.T) {
	r := load(t, "@server:\n    $port := 8080\n    $host := \"localhost\"\n")

	v, err := r.Eval("server.port + 1")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}

	if got, _ := v.AsInteger(); got != 8081 {
		t.Errorf("expected 8081, got %d", got)
	}

	v, err = r.Eval(`server.host + ":" + string(server.port)`)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}

	if got, _ := v.AsString(); got != "localhost:8080" {
		t.Errorf("expected localhost:8080, got %q", got)
	}

	if _, err := r.Eval("server.port +"); !errors.Is(err, ErrEval) {
		t.Errorf("expected ErrEval, got %v", err)
	}
}

func TestIntrinsic_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		err  error
	}{
		{
			name: "unknown intrinsic",
			expr: "[std_nope!!, 1]",
			err:  ErrUnknownIntrinsic,
		},
		{
			name: "wrong arity",
			expr: "[std_add_int!!, 1]",
			err:  ErrIntrinsicArgs,
		},
		{
			name: "wrong argument type",
			expr: `[std_add_int!!, 1, "two"]`,
			err:  ErrTypeMismatch,
		},
		{
			name: "no coercion across numeric types",
			expr: "[std_add_int!!, 1, 2.0]",
			err:  ErrTypeMismatch,
		},
		{
			name: "division by zero",
			expr: "[std_div_int!!, 1, 0]",
			err:  ErrIntrinsicArgs,
		},
		{
			name: "modulo by zero",
			expr: "[std_mod_int!!, 1, 0]",
			err:  ErrIntrinsicArgs,
		},
		{
			name: "substring bad range",
			expr: `[std_substring!!, "ab", 1, 9]`,
			err:  ErrInvalidRange,
		},
		{
			name: "unknown hash algorithm",
			expr: `[std_hash!!, "x", "md5"]`,
			err:  ErrIntrinsicArgs,
		},
		{
			name: "try wrong arity",
			expr: "[std_try!!, 1]",
			err:  ErrIntrinsicArgs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eval(t, tt.expr)
			if err == nil {
				t.Fatalf("expected error for %s", tt.expr)
			}

			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestIntrinsic_CustomFunction(t *testing.T) {
	twice := func(args []*lang.Value) (*lang.Value, error) {
		if err := arity("twice", args, 1); err != nil {
			return nil, err
		}

		i, err := wantInteger("twice", args[0])
		if err != nil {
			return nil, err
		}

		return lang.NewInteger(2 * i), nil
	}

	r, err := FromSource(
		context.Background(),
		"@t:\n    $v := [twice!!, 21]\n",
		WithFunction("twice", twice),
	)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if got, err := r.GetInteger("t", "v"); err != nil || got != 42 {
		t.Errorf("custom intrinsic: got %d, %v", got, err)
	}

	// The registration is scoped to its own store.
	other := load(t, "@t:\n    $v := [twice!!, 21]\n")

	if _, err := other.Get("t", "v"); !errors.Is(err, ErrUnknownIntrinsic) {
		t.Errorf("expected ErrUnknownIntrinsic on fresh store, got %v", err)
	}
}
