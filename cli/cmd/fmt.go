package cmd

import (
	"context"
	"os"
)

// Fmt reads vtc source, parses it, and writes the canonical form to stdout.
// Duplicate bindings collapse last-wins and spacing is normalized; values
// keep their declared integer bases and reference sigils.
type Fmt struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for configured sources." name:"source"`

	Output string `help:"Write formatted source to a file instead of stdout" short:"o" type:"path"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	store, err := storeFrom(ctx, f.Source)
	if err != nil {
		return err
	}

	if f.Output != "" {
		return store.DumpFile(f.Output)
	}

	return store.Dump(os.Stdout)
}
