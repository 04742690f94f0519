package runtime

import (
	"errors"
	"testing"
)

func TestFlattenList(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "already flat",
			source: "$v := [1, 2, 3]",
			want:   []string{"1", "2", "3"},
		},
		{
			name:   "nested",
			source: "$v := [1, [2, 3], [4, [5, 6]]]",
			want:   []string{"1", "2", "3", "4", "5", "6"},
		},
		{
			name:   "empty",
			source: "$v := []",
			want:   nil,
		},
		{
			name:   "empty sublists vanish",
			source: "$v := [[], [1], []]",
			want:   []string{"1"},
		},
		{
			name:   "mixed scalars",
			source: `$v := ["a", [True, [Nil]], 2.5]`,
			want:   []string{"a", "true", "Nil", "2.5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := load(t, "@t:\n    "+tt.source+"\n")

			flat, err := r.FlattenList("t", "v")
			if err != nil {
				t.Fatalf("flatten error: %v", err)
			}

			if len(flat) != len(tt.want) {
				t.Fatalf("expected %d leaves, got %d", len(tt.want), len(flat))
			}

			for i, want := range tt.want {
				if got := flat[i].String(); got != want {
					t.Errorf("leaf %d: expected %s, got %s", i, want, got)
				}
			}
		})
	}
}

func TestFlattenList_ResolvesReferences(t *testing.T) {
	source := "@t:\n" +
		"    $inner := [2, 3]\n" +
		"    $v := [1, %inner, 4]\n"

	r := load(t, source)

	flat, err := r.FlattenList("t", "v")
	if err != nil {
		t.Fatalf("flatten error: %v", err)
	}

	want := []string{"1", "2", "3", "4"}
	if len(flat) != len(want) {
		t.Fatalf("expected %d leaves, got %d", len(want), len(flat))
	}

	for i, w := range want {
		if got := flat[i].String(); got != w {
			t.Errorf("leaf %d: expected %s, got %s", i, w, got)
		}
	}
}

func TestFlattenList_NotAList(t *testing.T) {
	r := load(t, "@t:\n    $v := 1\n")

	if _, err := r.FlattenList("t", "v"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestAsDict(t *testing.T) {
	source := "@t:\n" +
		"    $v := [[\"host\", \"localhost\"], [\"port\", 8080], [1, \"one\"]]\n"

	r := load(t, source)

	dict, err := r.AsDict("t", "v")
	if err != nil {
		t.Fatalf("dict error: %v", err)
	}

	if len(dict) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(dict))
	}

	if got := dict["host"].String(); got != "localhost" {
		t.Errorf("host: got %s", got)
	}

	if got, _ := dict["port"].AsInteger(); got != 8080 {
		t.Errorf("port: got %d", got)
	}

	// Non-string keys map through their display form.
	if got := dict["1"].String(); got != "one" {
		t.Errorf("numeric key: got %s", got)
	}
}

func TestAsDict_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		err    error
	}{
		{
			name:   "duplicate key",
			source: `$v := [["k", 1], ["k", 2]]`,
			err:    ErrDuplicateKey,
		},
		{
			name:   "scalar item",
			source: `$v := [["k", 1], 2]`,
			err:    ErrStructural,
		},
		{
			name:   "triple item",
			source: `$v := [["k", 1, 2]]`,
			err:    ErrStructural,
		},
		{
			name:   "not a list",
			source: `$v := "scalar"`,
			err:    ErrTypeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := load(t, "@t:\n    "+tt.source+"\n")

			if _, err := r.AsDict("t", "v"); !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}
