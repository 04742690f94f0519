package cli

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/vtc/lang"
	"github.com/ardnew/vtc/runtime"
)

// resolve returns a [kong.ConfigurationLoader] that parses config files
// written in the vtc language.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve("config"), "/path/to/config")
//
// The named namespace supplies flag defaults:
//   - Each variable binding becomes one flag value
//   - Flag names with hyphens (e.g., "log-level") should use underscores
//     in the config file (e.g., "log_level")
//   - String values should be quoted
//   - Boolean values are true or false (unquoted)
//   - Numbers are unquoted
//
// Example vtc config file:
//
//	@config:
//	    $log_level := "debug"
//	    $log_format := "json"
//	    $log_pretty := true
//
// This configuration will be applied to Kong flags:
//
//	--log-level=debug
//	--log-format=json
//	--log-pretty=true
//
// Command-line flags override config file values.
func resolve(space string) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			// Unreadable config - return empty config
			return config{}, nil
		}

		store, err := runtime.FromSource(context.Background(), string(data))
		if err != nil {
			// Parse error - return empty config
			return config{}, nil
		}

		names, err := store.Variables(space)
		if err != nil {
			// Namespace not found - return empty config
			return config{}, nil
		}

		values := make(config, len(names))

		for _, name := range names {
			v, err := store.Get(space, name)
			if err != nil {
				continue
			}

			values[name] = flagValue(v)
		}

		return values, nil
	}
}

// config implements [kong.Resolver] for vtc language configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	// No validation needed - the config was already parsed successfully
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flags use hyphens (e.g., "log-level") but vtc identifiers
	// use underscores. Try both forms.
	name := flag.Name
	underscoreName := strings.ReplaceAll(name, "-", "_")

	// Look up the value in our config
	if value, ok := r[name]; ok {
		return value, nil
	}

	// Try underscore variant
	if value, ok := r[underscoreName]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

// flagValue converts a resolved value into the representation Kong expects.
// Kong requires numbers as strings for parsing.
func flagValue(v *lang.Value) any {
	switch v.Type() {
	case lang.TypeInteger:
		i, _ := v.AsInteger()

		return strconv.FormatInt(i, 10)
	case lang.TypeFloat:
		f, _ := v.AsFloat()

		return strconv.FormatFloat(f, 'f', -1, 64)
	case lang.TypeBoolean:
		b, _ := v.AsBoolean()

		return b
	case lang.TypeString:
		s, _ := v.AsString()

		return s
	case lang.TypeList:
		items, _ := v.AsList()
		out := make([]any, len(items))

		for i, item := range items {
			out[i] = flagValue(item)
		}

		return out
	default:
		return v.String()
	}
}
