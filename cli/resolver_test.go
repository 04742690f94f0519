package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func resolverFrom(t *testing.T, source string) kong.Resolver {
	t.Helper()

	r, err := resolve("config")(strings.NewReader(source))
	if err != nil {
		t.Fatalf("resolver error: %v", err)
	}

	return r
}

func resolveFlag(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	v, err := r.Resolve(nil, nil, &kong.Flag{
		Value: &kong.Value{Name: name},
	})
	if err != nil {
		t.Fatalf("resolve %q: %v", name, err)
	}

	return v
}

func TestResolver_Values(t *testing.T) {
	source := "@config:\n" +
		"    $log_level := \"debug\"\n" +
		"    $log_pretty := true\n" +
		"    $indent := 4\n" +
		"    $ratio := 0.5\n"

	r := resolverFrom(t, source)

	// Hyphenated flag names match underscored identifiers.
	if got := resolveFlag(t, r, "log-level"); got != "debug" {
		t.Errorf("log-level: got %v", got)
	}

	if got := resolveFlag(t, r, "log_pretty"); got != true {
		t.Errorf("log_pretty: got %v", got)
	}

	// Numbers resolve as strings for Kong's parser.
	if got := resolveFlag(t, r, "indent"); got != "4" {
		t.Errorf("indent: got %v", got)
	}

	if got := resolveFlag(t, r, "ratio"); got != "0.5" {
		t.Errorf("ratio: got %v", got)
	}

	// Unknown flags defer to Kong defaults.
	if got := resolveFlag(t, r, "absent"); got != nil {
		t.Errorf("absent: got %v", got)
	}
}

func TestResolver_BadSourceIsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "parse error", source: "@config:\n    $x :="},
		{name: "missing namespace", source: "@other:\n    $x := 1"},
		{name: "empty input", source: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := resolverFrom(t, tt.source)

			if got := resolveFlag(t, r, "x"); got != nil {
				t.Errorf("expected nil, got %v", got)
			}
		})
	}
}

func TestResolver_Validate(t *testing.T) {
	r := resolverFrom(t, "@config:\n    $x := 1\n")

	if err := r.Validate(nil); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
