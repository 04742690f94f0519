package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/vtc/lang"
	"github.com/ardnew/vtc/log"
	"github.com/ardnew/vtc/profile"
	"github.com/ardnew/vtc/runtime"
)

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config namespace undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	store := i.buildStore(ctx)

	err = store.DumpFile(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// buildStore collects current flag values into a @config namespace.
// Config identifiers use underscores where flag names use hyphens.
func (i *Init) buildStore(ctx context.Context) *runtime.Runtime {
	ktx := kongContextFrom(ctx)
	store := runtime.New()

	prefixIgnore := []string{"help", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		val := flagValue(ktx, flag.Name)
		if val != nil {
			name := strings.ReplaceAll(flag.Name, "-", "_")
			store.Add(ConfigIdentifier, name, val)
		}
	}

	return store
}

// flagValue returns the config value for a CLI flag, or nil if unset.
func flagValue(ktx *kong.Context, name string) *lang.Value {
	idx := slices.IndexFunc(ktx.Model.Flags, func(flag *kong.Flag) bool {
		return flag.Name == name
	})
	if idx == -1 {
		return nil
	}

	val := ktx.FlagValue(ktx.Model.Flags[idx])
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case bool:
		return lang.NewBoolean(v)

	case string:
		if v == "" {
			return nil
		}

		return lang.NewString(v)

	case int:
		return lang.NewInteger(int64(v))

	case int64:
		return lang.NewInteger(v)

	case uint:
		return lang.NewInteger(int64(v))

	case uint64:
		return lang.NewInteger(int64(v))

	case float32:
		return lang.NewFloat(float64(v))

	case float64:
		return lang.NewFloat(v)

	case []string:
		if len(v) == 0 {
			return nil
		}

		items := make([]*lang.Value, len(v))
		for i, s := range v {
			items[i] = lang.NewString(s)
		}

		return lang.NewList(items...)

	case []int:
		if len(v) == 0 {
			return nil
		}

		items := make([]*lang.Value, len(v))
		for i, n := range v {
			items[i] = lang.NewInteger(int64(n))
		}

		return lang.NewList(items...)

	case []int64:
		if len(v) == 0 {
			return nil
		}

		items := make([]*lang.Value, len(v))
		for i, n := range v {
			items[i] = lang.NewInteger(n)
		}

		return lang.NewList(items...)

	case []float64:
		if len(v) == 0 {
			return nil
		}

		items := make([]*lang.Value, len(v))
		for i, n := range v {
			items[i] = lang.NewFloat(n)
		}

		return lang.NewList(items...)

	case []bool:
		if len(v) == 0 {
			return nil
		}

		items := make([]*lang.Value, len(v))
		for i, b := range v {
			items[i] = lang.NewBoolean(b)
		}

		return lang.NewList(items...)

	default:
		return lang.NewString(fmt.Sprint(v))
	}
}
