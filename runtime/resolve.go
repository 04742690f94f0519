package runtime

import (
	"log/slog"

	"github.com/ardnew/vtc/lang"
)

// visitKey identifies a binding on the active resolution path.
type visitKey struct {
	space string
	name  string
}

// resolveReference follows a reference to its fully resolved value and
// applies the reference's accessors. The visited set holds every binding on
// the active path; revisiting one is a cycle.
func (r *Runtime) resolveReference(
	ref *lang.Reference,
	current string,
	visited map[visitKey]bool,
) (*lang.Value, error) {
	space := ref.Namespace
	if space == "" {
		space = current
	}

	if space == "" {
		return nil, ErrNamespaceNotFound.With(
			slog.String("reference", ref.String()),
		)
	}

	key := visitKey{space: space, name: ref.Name}
	if visited[key] {
		return nil, ErrCircularReference.With(
			slog.String("namespace", space),
			slog.String("variable", ref.Name),
		)
	}

	visited[key] = true
	defer delete(visited, key)

	ns, ok := r.find(space)
	if !ok {
		return nil, ErrNamespaceNotFound.With(slog.String("namespace", space))
	}

	v, ok := ns.lookup(ref.Name)
	if !ok {
		return nil, ErrVariableNotFound.With(
			slog.String("namespace", space),
			slog.String("variable", ref.Name),
		)
	}

	value, err := r.resolveValue(v.value, space, visited)
	if err != nil {
		return nil, err
	}

	for _, acc := range ref.Accessors {
		value, err = applyAccessor(value, acc)
		if err != nil {
			return nil, err
		}
	}

	return value, nil
}

// resolveValue reduces a value to its ground form: references are followed,
// intrinsic calls evaluated, and list items resolved recursively.
// A bare intrinsic marker cannot stand alone as a value.
func (r *Runtime) resolveValue(
	v *lang.Value,
	current string,
	visited map[visitKey]bool,
) (*lang.Value, error) {
	switch v.Type() {
	case lang.TypeReference:
		ref, _ := v.AsReference()

		return r.resolveReference(ref, current, visited)

	case lang.TypeIntrinsic:
		name, _ := v.IntrinsicName()

		return nil, ErrIntrinsicArgs.With(slog.String("intrinsic", name))

	case lang.TypeList:
		if first := v.Item(0); first != nil {
			if _, ok := first.IntrinsicName(); ok {
				return r.evalCall(v, current, visited)
			}
		}

		items := make([]*lang.Value, 0, v.Len())

		for i := range v.Len() {
			item, err := r.resolveValue(v.Item(i), current, visited)
			if err != nil {
				return nil, err
			}

			items = append(items, item)
		}

		return lang.NewList(items...), nil

	default:
		return v, nil
	}
}

// applyAccessor selects an element, slice, or keyed entry from a resolved
// value. Index and range accessors apply to lists and strings; key
// accessors apply to lists of two-element key/value pairs, matching on the
// key's display string.
func applyAccessor(v *lang.Value, acc lang.Accessor) (*lang.Value, error) {
	switch acc.Kind {
	case lang.AccessIndex:
		return accessIndex(v, acc.Index)
	case lang.AccessRange:
		return accessRange(v, acc.Start, acc.End)
	case lang.AccessKey:
		return accessKey(v, acc.Key)
	default:
		return nil, ErrInvalidAccessor
	}
}

func accessIndex(v *lang.Value, index int64) (*lang.Value, error) {
	outOfBounds := ErrIndexOutOfBounds.With(slog.Int64("index", index))

	if items, ok := v.AsList(); ok {
		if index < 0 || index >= int64(len(items)) {
			return nil, outOfBounds
		}

		return items[index], nil
	}

	if s, ok := v.AsString(); ok {
		runes := []rune(s)
		if index < 0 || index >= int64(len(runes)) {
			return nil, outOfBounds
		}

		return lang.NewString(string(runes[index])), nil
	}

	return nil, ErrInvalidAccessor.With(slog.String("type", v.Type().String()))
}

func accessRange(v *lang.Value, start, end int64) (*lang.Value, error) {
	invalid := ErrInvalidRange.With(
		slog.Int64("start", start),
		slog.Int64("end", end),
	)

	if items, ok := v.AsList(); ok {
		if start < 0 || start > end || end > int64(len(items)) {
			return nil, invalid
		}

		return lang.NewList(items[start:end]...), nil
	}

	if s, ok := v.AsString(); ok {
		runes := []rune(s)
		if start < 0 || start > end || end > int64(len(runes)) {
			return nil, invalid
		}

		return lang.NewString(string(runes[start:end])), nil
	}

	return nil, ErrInvalidAccessor.With(slog.String("type", v.Type().String()))
}

// accessKey looks up an entry in a list of two-element key/value pairs.
func accessKey(v *lang.Value, key string) (*lang.Value, error) {
	items, ok := v.AsList()
	if !ok {
		return nil, ErrInvalidAccessor.With(
			slog.String("key", key),
			slog.String("type", v.Type().String()),
		)
	}

	for _, item := range items {
		pair, ok := item.AsList()
		if !ok || len(pair) != 2 {
			return nil, ErrStructural.With(
				slog.String("key", key),
				slog.String("error", "expected list of key-value pairs"),
			)
		}

		if pair[0].String() == key {
			return pair[1], nil
		}
	}

	return nil, ErrVariableNotFound.With(slog.String("key", key))
}
