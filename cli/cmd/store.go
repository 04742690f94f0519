package cmd

import (
	"context"
	"io"
	"os"

	"github.com/ardnew/vtc/log"
	"github.com/ardnew/vtc/runtime"
)

// storeFrom loads every configured source into a single runtime store.
//
// When source is "-" or empty, input comes from the --source flags stored in
// the command context (or stdin when none were given). Otherwise source names
// a file that is loaded by itself.
func storeFrom(
	ctx context.Context,
	source string,
) (*runtime.Runtime, error) {
	reader, err := sourceReader(ctx, source)
	if err != nil {
		return nil, err
	}

	if c, ok := reader.(io.Closer); ok {
		defer c.Close()
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, ErrReadSource.Wrap(err)
	}

	return runtime.FromSource(
		ctx,
		string(data),
		runtime.WithLogger(log.Default()),
	)
}

// sourceReader selects the input stream for a command.
func sourceReader(ctx context.Context, source string) (io.Reader, error) {
	if source != "" && source != stdinSource {
		f, err := os.Open(source)
		if err != nil {
			return nil, ErrReadSource.Wrap(err)
		}

		return f, nil
	}

	if srcs := sourceFilesFrom(ctx); srcs != nil {
		return srcs, nil
	}

	return os.Stdin, nil
}
