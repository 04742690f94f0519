package cmd

import (
	"context"
	"fmt"
)

// List prints namespace names, or the variable bindings of one namespace,
// in first-appearance order.
type List struct {
	Namespace string `arg:"" help:"Namespace to list; all namespaces when omitted" name:"namespace" optional:""`
	Source    string `       help:"Source input file or '-' for configured sources"                              default:"-" short:"f"`
}

// Run executes the list command.
func (l *List) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	store, err := storeFrom(ctx, l.Source)
	if err != nil {
		return err
	}

	if l.Namespace == "" {
		for _, name := range store.Namespaces() {
			fmt.Println(name)
		}

		return nil
	}

	names, err := store.Variables(l.Namespace)
	if err != nil {
		return err
	}

	for _, name := range names {
		value, err := store.Get(l.Namespace, name)
		if err != nil {
			fmt.Printf("%s = <%v>\n", name, err)

			continue
		}

		fmt.Printf("%s = %s\n", name, value.Quote())
	}

	return nil
}
