package cmd

import (
	"context"
	"io"

	"github.com/ardnew/vtc/cli/cmd/repl"
	"github.com/ardnew/vtc/log"
)

// Repl starts an interactive session over the configured sources.
type Repl struct {
	Source string `help:"Source input file or '-' for configured sources" default:"-" short:"f"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	cacheDir, ok := ktx.Model.Vars()[CacheIdentifier]
	if !ok {
		panic("internal error: cache directory undefined")
	}

	reader, err := sourceReader(ctx, r.Source)
	if err != nil {
		return err
	}

	if c, ok := reader.(io.Closer); ok {
		defer c.Close()
	}

	return repl.Run(ctx, reader, cacheDir, log.Default())
}
