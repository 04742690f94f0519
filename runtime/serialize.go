package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/vtc/lang"
)

// Dump writes the entire store as VTC source: one block per namespace with
// four-space indented bindings. Values are written in source form, so
// references and intrinsic calls survive a round trip unevaluated.
func (r *Runtime) Dump(w io.Writer) error {
	for i, ns := range r.spaces {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return ErrWrite.Wrap(err)
			}
		}

		if _, err := fmt.Fprintf(w, "@%s:\n", ns.name); err != nil {
			return ErrWrite.Wrap(err)
		}

		for _, v := range ns.vars {
			_, err := fmt.Fprintf(w, "    $%s := %s\n", v.name, v.value.Quote())
			if err != nil {
				return ErrWrite.Wrap(err)
			}
		}
	}

	return nil
}

// DumpFile writes the store as VTC source to the file at path.
func (r *Runtime) DumpFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return ErrWrite.Wrap(err)
	}

	err = r.Dump(f)
	if err != nil {
		_ = f.Close()

		return err
	}

	return f.Close()
}

// Source returns the store rendered as VTC source text.
func (r *Runtime) Source() string {
	var b strings.Builder

	_ = r.Dump(&b)

	return b.String()
}

// ToMap converts the store into nested native maps: namespace name to
// variable name to resolved native value. References and intrinsic calls
// are evaluated; a resolution failure aborts the conversion.
func (r *Runtime) ToMap() (map[string]any, error) {
	out := make(map[string]any, len(r.spaces))

	for _, ns := range r.spaces {
		vars := make(map[string]any, len(ns.vars))

		for _, v := range ns.vars {
			resolved, err := r.Get(ns.name, v.name)
			if err != nil {
				return nil, err
			}

			vars[v.name] = toNative(resolved)
		}

		out[ns.name] = vars
	}

	return out, nil
}

// ExportJSON writes the resolved store as indented JSON.
func (r *Runtime) ExportJSON(_ context.Context, w io.Writer, indent int) error {
	m, err := r.ToMap()
	if err != nil {
		return err
	}

	var data []byte

	if indent > 0 {
		data, err = json.MarshalIndent(m, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(m)
	}

	if err != nil {
		return ErrMarshal.Wrap(err)
	}

	_, err = fmt.Fprintln(w, string(data))
	if err != nil {
		return ErrWrite.Wrap(err)
	}

	return nil
}

// ExportYAML writes the resolved store as YAML. A zero indent selects flow
// style.
func (r *Runtime) ExportYAML(ctx context.Context, w io.Writer, indent int) error {
	m, err := r.ToMap()
	if err != nil {
		return err
	}

	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, m, opts...)
	if err != nil {
		return ErrMarshal.Wrap(err)
	}

	_, err = fmt.Fprint(w, string(data))
	if err != nil {
		return ErrWrite.Wrap(err)
	}

	return nil
}

// toNative converts a resolved value into plain Go data for marshalers and
// expression environments. Resolved values never contain references or
// intrinsic markers.
func toNative(v *lang.Value) any {
	switch v.Type() {
	case lang.TypeString:
		s, _ := v.AsString()

		return s
	case lang.TypeInteger:
		i, _ := v.AsInteger()

		return i
	case lang.TypeFloat:
		f, _ := v.AsFloat()

		return f
	case lang.TypeBoolean:
		b, _ := v.AsBoolean()

		return b
	case lang.TypeList:
		items, _ := v.AsList()
		out := make([]any, len(items))

		for i, item := range items {
			out[i] = toNative(item)
		}

		return out
	default:
		return nil
	}
}
