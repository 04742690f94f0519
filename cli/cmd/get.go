package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ardnew/vtc/lang"
	"github.com/ardnew/vtc/runtime"
)

// Get resolves a variable and prints its value. References are followed,
// intrinsic calls evaluated, and any accessors in the path applied.
type Get struct {
	Path   string `arg:"" help:"Variable path, e.g. server.host or server.list->(0)" name:"path"`
	Source string `       help:"Source input file or '-' for configured sources"                  default:"-" short:"f"`

	Type    string `enum:",nil,string,integer,float,boolean,list,reference,intrinsic" default:"" help:"Require the resolved value to have this type"`
	Flatten bool   `help:"Recursively flatten a list before printing"                                         short:"F"`
	Dict    bool   `help:"Interpret a list of pairs as a dictionary"                                          short:"D"`

	Quote bool `help:"Print the value in source form" short:"q"`
}

// Run executes the get command.
func (g *Get) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ref, err := lang.ParseReference(g.Path)
	if err != nil {
		return err
	}

	if ref.Namespace == "" {
		return ErrBadPath.With(
			slog.String("path", g.Path),
			slog.String("error", "expected namespace.variable"),
		)
	}

	store, err := storeFrom(ctx, g.Source)
	if err != nil {
		return err
	}

	switch {
	case g.Flatten:
		return g.printFlattened(store, ref)

	case g.Dict:
		return g.printDict(store, ref)
	}

	value, err := store.Get(ref.Namespace, ref.Name, ref.Accessors...)
	if err != nil {
		return err
	}

	if g.Type != "" && value.Type().String() != g.Type {
		return runtime.ErrTypeMismatch.With(
			slog.String("path", g.Path),
			slog.String("want", g.Type),
			slog.String("have", value.Type().String()),
		)
	}

	fmt.Println(g.render(value))

	return nil
}

// printFlattened prints the variable as a recursively flattened list.
// Accessors do not combine with flattening because the flattened list is a
// derived value with its own element positions.
func (g *Get) printFlattened(store *runtime.Runtime, ref *lang.Reference) error {
	if len(ref.Accessors) > 0 {
		return ErrBadPath.With(
			slog.String("path", g.Path),
			slog.String("error", "accessors cannot combine with --flatten"),
		)
	}

	items, err := store.FlattenList(ref.Namespace, ref.Name)
	if err != nil {
		return err
	}

	fmt.Println(g.render(lang.NewList(items...)))

	return nil
}

// printDict prints the variable as key/value lines, sorted by key so output
// is stable.
func (g *Get) printDict(store *runtime.Runtime, ref *lang.Reference) error {
	if len(ref.Accessors) > 0 {
		return ErrBadPath.With(
			slog.String("path", g.Path),
			slog.String("error", "accessors cannot combine with --dict"),
		)
	}

	dict, err := store.AsDict(ref.Namespace, ref.Name)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(dict))
	for key := range dict {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		fmt.Printf("%s = %s\n", key, g.render(dict[key]))
	}

	return nil
}

func (g *Get) render(value *lang.Value) string {
	if g.Quote {
		return value.Quote()
	}

	return value.String()
}
