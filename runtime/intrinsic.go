package runtime

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/vtc/lang"
)

// Func is an intrinsic function: it receives fully resolved arguments and
// returns a value. Arity and type checking are the function's own
// responsibility.
type Func func(args []*lang.Value) (*lang.Value, error)

// Registry maps intrinsic names to their implementations. Each store owns
// one registry, so custom functions registered on one store never leak into
// another.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry creates a registry preloaded with the standard library.
func NewRegistry() *Registry {
	reg := &Registry{funcs: make(map[string]Func)}

	// Integer arithmetic. Results wrap on overflow.
	reg.Register("std_add_int", intBinop(func(a, b int64) int64 { return a + b }))
	reg.Register("std_sub_int", intBinop(func(a, b int64) int64 { return a - b }))
	reg.Register("std_mul_int", intBinop(func(a, b int64) int64 { return a * b }))
	reg.Register("std_div_int", stdDivInt)
	reg.Register("std_mod_int", stdModInt)

	// Float arithmetic
	reg.Register("std_add_float", floatBinop(func(a, b float64) float64 { return a + b }))
	reg.Register("std_sub_float", floatBinop(func(a, b float64) float64 { return a - b }))
	reg.Register("std_mul_float", floatBinop(func(a, b float64) float64 { return a * b }))
	reg.Register("std_div_float", stdDivFloat)

	// Conversions
	reg.Register("std_int_to_float", stdIntToFloat)
	reg.Register("std_float_to_int", stdFloatToInt)

	// Comparisons
	reg.Register("std_eq", stdEq)
	reg.Register("std_lt", stdLt)
	reg.Register("std_gt", stdGt)

	// Bitwise operations
	reg.Register("std_bitwise_and", intBinop(func(a, b int64) int64 { return a & b }))
	reg.Register("std_bitwise_or", intBinop(func(a, b int64) int64 { return a | b }))
	reg.Register("std_bitwise_xor", intBinop(func(a, b int64) int64 { return a ^ b }))
	reg.Register("std_bitwise_not", stdBitwiseNot)

	// String operations
	reg.Register("std_to_uppercase", stringUnop(strings.ToUpper))
	reg.Register("std_to_lowercase", stringUnop(strings.ToLower))
	reg.Register("std_substring", stdSubstring)
	reg.Register("std_concat", stdConcat)
	reg.Register("std_replace", stdReplace)

	// Encoding and hashing
	reg.Register("std_base64_encode", stdBase64Encode)
	reg.Register("std_base64_decode", stdBase64Decode)
	reg.Register("std_hash", stdHash)

	// Control flow
	reg.Register("std_if", stdIf)

	return reg
}

// Register binds an intrinsic name to its implementation, replacing any
// existing binding.
func (reg *Registry) Register(name string, fn Func) {
	reg.funcs[name] = fn
}

// Lookup returns the implementation of an intrinsic name.
func (reg *Registry) Lookup(name string) (Func, bool) {
	fn, ok := reg.funcs[name]

	return fn, ok
}

// evalCall evaluates a list whose first element is an intrinsic marker.
// Arguments are resolved before the call, except for std_try, which needs
// its first argument's resolution failure.
func (r *Runtime) evalCall(
	v *lang.Value,
	current string,
	visited map[visitKey]bool,
) (*lang.Value, error) {
	name, _ := v.Item(0).IntrinsicName()

	if v.Len() < 2 {
		return nil, ErrIntrinsicArgs.With(
			slog.String("intrinsic", name),
			slog.String("error", "call requires at least one argument"),
		)
	}

	if name == "std_try" {
		return r.evalTry(v, current, visited)
	}

	fn, ok := r.funcs.Lookup(name)
	if !ok {
		return nil, ErrUnknownIntrinsic.With(slog.String("intrinsic", name))
	}

	args := make([]*lang.Value, 0, v.Len()-1)

	for i := 1; i < v.Len(); i++ {
		arg, err := r.resolveValue(v.Item(i), current, visited)
		if err != nil {
			return nil, err
		}

		args = append(args, arg)
	}

	result, err := fn(args)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("intrinsic", name))
	}

	return result, nil
}

// evalTry resolves its first argument and falls back to the second when
// resolution fails.
func (r *Runtime) evalTry(
	v *lang.Value,
	current string,
	visited map[visitKey]bool,
) (*lang.Value, error) {
	if v.Len() != 3 {
		return nil, ErrIntrinsicArgs.With(
			slog.String("intrinsic", "std_try"),
			slog.String("error", "expects expression and fallback"),
		)
	}

	result, err := r.resolveValue(v.Item(1), current, visited)
	if err == nil {
		return result, nil
	}

	return r.resolveValue(v.Item(2), current, visited)
}

// Eval compiles and runs an expression against the store's resolved
// namespaces. Each namespace is visible as a map of variable name to native
// value, so "server.port + 1" reads the port binding of @server.
func (r *Runtime) Eval(source string) (*lang.Value, error) {
	return r.evalIntrinsic([]*lang.Value{lang.NewString(source)})
}

// evalIntrinsic implements std_eval: it compiles and runs an expr program
// against an environment of the store's resolved namespaces. Each namespace
// appears as a map of variable name to native value.
func (r *Runtime) evalIntrinsic(args []*lang.Value) (*lang.Value, error) {
	if len(args) != 1 {
		return nil, ErrIntrinsicArgs.With(
			slog.String("intrinsic", "std_eval"),
			slog.String("error", "expects one string argument"),
		)
	}

	source, ok := args[0].AsString()
	if !ok {
		return nil, ErrIntrinsicArgs.With(
			slog.String("intrinsic", "std_eval"),
			slog.String("type", args[0].Type().String()),
		)
	}

	env := make(map[string]any, len(r.spaces))

	for _, ns := range r.spaces {
		vars := make(map[string]any, len(ns.vars))

		for _, v := range ns.vars {
			resolved, err := r.Get(ns.name, v.name)
			if err != nil {
				// Unresolvable bindings are omitted rather than failing the
				// whole environment.
				continue
			}

			vars[v.name] = toNative(resolved)
		}

		env[ns.name] = vars
	}

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, ErrEval.Wrap(err).With(slog.String("source", source))
	}

	output, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrEval.Wrap(err).With(slog.String("source", source))
	}

	return fromNative(output)
}

// fromNative converts an expr result back into the value domain.
func fromNative(x any) (*lang.Value, error) {
	switch t := x.(type) {
	case nil:
		return lang.NewNil(), nil
	case bool:
		return lang.NewBoolean(t), nil
	case int:
		return lang.NewInteger(int64(t)), nil
	case int64:
		return lang.NewInteger(t), nil
	case float64:
		return lang.NewFloat(t), nil
	case string:
		return lang.NewString(t), nil
	case []any:
		items := make([]*lang.Value, 0, len(t))

		for _, item := range t {
			v, err := fromNative(item)
			if err != nil {
				return nil, err
			}

			items = append(items, v)
		}

		return lang.NewList(items...), nil
	default:
		return nil, ErrEval.With(
			slog.String("error", "unsupported result type"),
		)
	}
}

// Standard library implementations

func arity(name string, args []*lang.Value, want int) error {
	if len(args) != want {
		return ErrIntrinsicArgs.With(
			slog.String("intrinsic", name),
			slog.Int("expected", want),
			slog.Int("actual", len(args)),
		)
	}

	return nil
}

func wantInteger(name string, v *lang.Value) (int64, error) {
	i, ok := v.AsInteger()
	if !ok {
		return 0, ErrTypeMismatch.With(
			slog.String("intrinsic", name),
			slog.String("expected", "integer"),
			slog.String("actual", v.Type().String()),
		)
	}

	return i, nil
}

func wantFloat(name string, v *lang.Value) (float64, error) {
	f, ok := v.AsFloat()
	if !ok {
		return 0, ErrTypeMismatch.With(
			slog.String("intrinsic", name),
			slog.String("expected", "float"),
			slog.String("actual", v.Type().String()),
		)
	}

	return f, nil
}

func wantString(name string, v *lang.Value) (string, error) {
	s, ok := v.AsString()
	if !ok {
		return "", ErrTypeMismatch.With(
			slog.String("intrinsic", name),
			slog.String("expected", "string"),
			slog.String("actual", v.Type().String()),
		)
	}

	return s, nil
}

// intBinop builds a two-integer intrinsic from an operator.
func intBinop(op func(a, b int64) int64) Func {
	return func(args []*lang.Value) (*lang.Value, error) {
		if err := arity("integer operation", args, 2); err != nil {
			return nil, err
		}

		a, err := wantInteger("integer operation", args[0])
		if err != nil {
			return nil, err
		}

		b, err := wantInteger("integer operation", args[1])
		if err != nil {
			return nil, err
		}

		return lang.NewInteger(op(a, b)), nil
	}
}

// floatBinop builds a two-float intrinsic from an operator.
func floatBinop(op func(a, b float64) float64) Func {
	return func(args []*lang.Value) (*lang.Value, error) {
		if err := arity("float operation", args, 2); err != nil {
			return nil, err
		}

		a, err := wantFloat("float operation", args[0])
		if err != nil {
			return nil, err
		}

		b, err := wantFloat("float operation", args[1])
		if err != nil {
			return nil, err
		}

		return lang.NewFloat(op(a, b)), nil
	}
}

// stringUnop builds a one-string intrinsic from a transform.
func stringUnop(op func(string) string) Func {
	return func(args []*lang.Value) (*lang.Value, error) {
		if err := arity("string operation", args, 1); err != nil {
			return nil, err
		}

		s, err := wantString("string operation", args[0])
		if err != nil {
			return nil, err
		}

		return lang.NewString(op(s)), nil
	}
}

func stdDivInt(args []*lang.Value) (*lang.Value, error) {
	if err := arity("std_div_int", args, 2); err != nil {
		return nil, err
	}

	a, err := wantInteger("std_div_int", args[0])
	if err != nil {
		return nil, err
	}

	b, err := wantInteger("std_div_int", args[1])
	if err != nil {
		return nil, err
	}

	if b == 0 {
		return nil, ErrIntrinsicArgs.With(
			slog.String("intrinsic", "std_div_int"),
			slog.String("error", "division by zero"),
		)
	}

	return lang.NewInteger(a / b), nil
}

func stdModInt(args []*lang.Value) (*lang.Value, error) {
	if err := arity("std_mod_int", args, 2); err != nil {
		return nil, err
	}

	a, err := wantInteger("std_mod_int", args[0])
	if err != nil {
		return nil, err
	}

	b, err := wantInteger("std_mod_int", args[1])
	if err != nil {
		return nil, err
	}

	if b == 0 {
		return nil, ErrIntrinsicArgs.With(
			slog.String("intrinsic", "std_mod_int"),
			slog.String("error", "division by zero"),
		)
	}

	return lang.NewInteger(a % b), nil
}

func stdDivFloat(args []*lang.Value) (*lang.Value, error) {
	if err := arity("std_div_float", args, 2); err != nil {
		return nil, err
	}

	a, err := wantFloat("std_div_float", args[0])
	if err != nil {
		return nil, err
	}

	b, err := wantFloat("std_div_float", args[1])
	if err != nil {
		return nil, err
	}

	if b == 0 {
		return nil, ErrIntrinsicArgs.With(
			slog.String("intrinsic", "std_div_float"),
			slog.String("error", "division by zero"),
		)
	}

	return lang.NewFloat(a / b), nil
}

func stdIntToFloat(args []*lang.Value) (*lang.Value, error) {
	if err := arity("std_int_to_float", args, 1); err != nil {
		return nil, err
	}

	i, err := wantInteger("std_int_to_float", args[0])
	if err != nil {
		return nil, err
	}

	return lang.NewFloat(float64(i)), nil
}

func stdFloatToInt(args []*lang.Value) (*lang.Value, error) {
	if err := arity("std_float_to_int", args, 1); err != nil {
		return nil, err
	}

	f, err := wantFloat("std_float_to_int", args[0])
	if err != nil {
		return nil, err
	}

	return lang.NewInteger(int64(f)), nil
}

func stdEq(args []*lang.Value) (*lang.Value, error) {
	if err := arity("std_eq", args, 2); err != nil {
		return nil, err
	}

	return lang.NewBoolean(lang.Equal(args[0], args[1])), nil
}

// compare orders two values of the same numeric or string type.
func compare(name string, a, b *lang.Value) (int, error) {
	if ai, ok := a.AsInteger(); ok {
		bi, err := wantInteger(name, b)
		if err != nil {
			return 0, err
		}

		switch {
		case ai < bi:
			return -1, nil
		case ai > bi:
			return 1, nil
		default:
			return 0, nil
		}
	}

	if af, ok := a.AsFloat(); ok {
		bf, err := wantFloat(name, b)
		if err != nil {
			return 0, err
		}

		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}

	if as, ok := a.AsString(); ok {
		bs, err := wantString(name, b)
		if err != nil {
			return 0, err
		}

		return strings.Compare(as, bs), nil
	}

	return 0, ErrTypeMismatch.With(
		slog.String("intrinsic", name),
		slog.String("expected", "integer, float, or string"),
		slog.String("actual", a.Type().String()),
	)
}

func stdLt(args []*lang.Value) (*lang.Value, error) {
	if err := arity("std_lt", args, 2); err != nil {
		return nil, err
	}

	c, err := compare("std_lt", args[0], args[1])
	if err != nil {
		return nil, err
	}

	return lang.NewBoolean(c < 0), nil
}

func stdGt(args []*lang.Value) (*lang.Value, error) {
	if err := arity("std_gt", args, 2); err != nil {
		return nil, err
	}

	c, err := compare("std_gt", args[0], args[1])
	if err != nil {
		return nil, err
	}

	return lang.NewBoolean(c > 0), nil
}

func stdBitwiseNot(args []*lang.Value) (*lang.Value, error) {
	if err := arity("std_bitwise_not", args, 1); err != nil {
		return nil, err
	}

	i, err := wantInteger("std_bitwise_not", args[0])
	if err != nil {
		return nil, err
	}

	return lang.NewInteger(^i), nil
}

func stdSubstring(args []*lang.Value) (*lang.Value, error) {
	if err := arity("std_substring", args, 3); err != nil {
		return nil, err
	}

	s, err := wantString("std_substring", args[0])
	if err != nil {
		return nil, err
	}

	start, err := wantInteger("std_substring", args[1])
	if err != nil {
		return nil, err
	}

	end, err := wantInteger("std_substring", args[2])
	if err != nil {
		return nil, err
	}

	runes := []rune(s)
	if start < 0 || start > end || end > int64(len(runes)) {
		return nil, ErrInvalidRange.With(
			slog.String("intrinsic", "std_substring"),
			slog.Int64("start", start),
			slog.Int64("end", end),
		)
	}

	return lang.NewString(string(runes[start:end])), nil
}

// stdConcat joins any number of string arguments.
func stdConcat(args []*lang.Value) (*lang.Value, error) {
	if len(args) == 0 {
		return nil, ErrIntrinsicArgs.With(
			slog.String("intrinsic", "std_concat"),
		)
	}

	var b strings.Builder

	for _, arg := range args {
		s, err := wantString("std_concat", arg)
		if err != nil {
			return nil, err
		}

		b.WriteString(s)
	}

	return lang.NewString(b.String()), nil
}

func stdReplace(args []*lang.Value) (*lang.Value, error) {
	if err := arity("std_replace", args, 3); err != nil {
		return nil, err
	}

	s, err := wantString("std_replace", args[0])
	if err != nil {
		return nil, err
	}

	from, err := wantString("std_replace", args[1])
	if err != nil {
		return nil, err
	}

	to, err := wantString("std_replace", args[2])
	if err != nil {
		return nil, err
	}

	return lang.NewString(strings.ReplaceAll(s, from, to)), nil
}

func stdBase64Encode(args []*lang.Value) (*lang.Value, error) {
	if err := arity("std_base64_encode", args, 1); err != nil {
		return nil, err
	}

	s, err := wantString("std_base64_encode", args[0])
	if err != nil {
		return nil, err
	}

	return lang.NewString(
		base64.StdEncoding.EncodeToString([]byte(s)),
	), nil
}

func stdBase64Decode(args []*lang.Value) (*lang.Value, error) {
	if err := arity("std_base64_decode", args, 1); err != nil {
		return nil, err
	}

	s, err := wantString("std_base64_decode", args[0])
	if err != nil {
		return nil, err
	}

	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrIntrinsicArgs.Wrap(err).
			With(slog.String("intrinsic", "std_base64_decode"))
	}

	return lang.NewString(string(decoded)), nil
}

func stdHash(args []*lang.Value) (*lang.Value, error) {
	if err := arity("std_hash", args, 2); err != nil {
		return nil, err
	}

	s, err := wantString("std_hash", args[0])
	if err != nil {
		return nil, err
	}

	algorithm, err := wantString("std_hash", args[1])
	if err != nil {
		return nil, err
	}

	switch algorithm {
	case "sha256":
		sum := sha256.Sum256([]byte(s))

		return lang.NewString(hex.EncodeToString(sum[:])), nil
	default:
		return nil, ErrIntrinsicArgs.With(
			slog.String("intrinsic", "std_hash"),
			slog.String("algorithm", algorithm),
		)
	}
}

func stdIf(args []*lang.Value) (*lang.Value, error) {
	if err := arity("std_if", args, 3); err != nil {
		return nil, err
	}

	cond, ok := args[0].AsBoolean()
	if !ok {
		return nil, ErrTypeMismatch.With(
			slog.String("intrinsic", "std_if"),
			slog.String("expected", "boolean"),
			slog.String("actual", args[0].Type().String()),
		)
	}

	if cond {
		return args[1], nil
	}

	return args[2], nil
}
