package cmd

import (
	"context"
	"os"
)

// Export resolves every binding in the store and writes the result in a
// structured interchange format.
type Export struct {
	JSON ExportJSON `cmd:"" default:"withargs" help:"Export as JSON (default)."`
	YAML ExportYAML `cmd:""                    help:"Export as YAML."`
}

// ExportJSON writes the resolved store as JSON.
type ExportJSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for configured sources." name:"source"`
}

// Run executes the export json command.
func (e *ExportJSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	store, err := storeFrom(ctx, e.Source)
	if err != nil {
		return err
	}

	return store.ExportJSON(ctx, os.Stdout, e.Indent)
}

// ExportYAML writes the resolved store as YAML. A zero indent selects flow
// style.
type ExportYAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for configured sources." name:"source"`
}

// Run executes the export yaml command.
func (e *ExportYAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	store, err := storeFrom(ctx, e.Source)
	if err != nil {
		return err
	}

	return store.ExportYAML(ctx, os.Stdout, e.Indent)
}
