package runtime

import (
	"log/slog"

	"github.com/ardnew/vtc/lang"
)

// FlattenList returns the scalar leaves of a list variable in depth-first,
// left-to-right order. The variable must resolve to a list; nesting depth is
// unbounded, so traversal uses an explicit work stack.
func (r *Runtime) FlattenList(space, name string) ([]*lang.Value, error) {
	items, err := r.GetList(space, name)
	if err != nil {
		return nil, err
	}

	out := make([]*lang.Value, 0, len(items))

	// Stack of pending values; pushed in reverse so pops preserve source
	// order.
	stack := make([]*lang.Value, 0, len(items))

	for i := len(items) - 1; i >= 0; i-- {
		stack = append(stack, items[i])
	}

	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if nested, ok := v.AsList(); ok {
			for i := len(nested) - 1; i >= 0; i-- {
				stack = append(stack, nested[i])
			}

			continue
		}

		out = append(out, v)
	}

	return out, nil
}

// AsDict interprets a list variable as a dictionary: every item must be a
// two-element [key, value] list. Keys are the display strings of the key
// values. A repeated key is rejected rather than silently overwritten.
func (r *Runtime) AsDict(space, name string) (map[string]*lang.Value, error) {
	items, err := r.GetList(space, name)
	if err != nil {
		return nil, err
	}

	dict := make(map[string]*lang.Value, len(items))

	for _, item := range items {
		pair, ok := item.AsList()
		if !ok {
			return nil, ErrStructural.With(
				slog.String("namespace", space),
				slog.String("variable", name),
				slog.String("expected", "list of key-value pairs"),
				slog.String("actual", item.Type().String()),
			)
		}

		if len(pair) != 2 {
			return nil, ErrStructural.With(
				slog.String("namespace", space),
				slog.String("variable", name),
				slog.Int("pair_length", len(pair)),
			)
		}

		key := pair[0].String()

		if _, exists := dict[key]; exists {
			return nil, ErrDuplicateKey.With(
				slog.String("namespace", space),
				slog.String("variable", name),
				slog.String("key", key),
			)
		}

		dict[key] = pair[1]
	}

	return dict, nil
}
