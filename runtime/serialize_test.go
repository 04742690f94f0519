package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/vtc/lang"
)

func TestDump_RoundTrip(t *testing.T) {
	source := "@server:\n" +
		"    $host := \"localhost\"\n" +
		"    $port := 8080\n" +
		"    $mask := 0b1010\n" +
		"    $magic := 0xCAFE\n" +
		"    $offset := -0x1A\n" +
		"    $ratio := 0.5\n" +
		"    $whole := 2.0\n" +
		"    $ready := true\n" +
		"    $nothing := Nil\n" +
		"    $tags := [\"a\", [1, 2]]\n" +
		"\n" +
		"@client:\n" +
		"    $endpoint := &server.host\n" +
		"    $alias := %endpoint\n" +
		"    $sum := [std_add_int!!, 1, 2]\n"

	r := load(t, source)

	// Dump preserves declared bases, reference sigils, and unevaluated
	// intrinsic calls.
	if got := r.Source(); got != source {
		t.Errorf("dump differs from source:\n%s", got)
	}

	again := load(t, r.Source())

	if again.Source() != r.Source() {
		t.Error("dump is not a fixed point")
	}

	// The reloaded store resolves identically.
	if got, err := again.GetInteger("client", "sum"); err != nil || got != 3 {
		t.Errorf("reloaded intrinsic: got %d, %v", got, err)
	}

	if got, err := again.GetString("client", "alias"); err != nil || got != "localhost" {
		t.Errorf("reloaded reference: got %q, %v", got, err)
	}

	if got, err := again.GetInteger("server", "offset"); err != nil || got != -26 {
		t.Errorf("reloaded signed hexadecimal: got %d, %v", got, err)
	}
}

func TestDumpFile(t *testing.T) {
	r := load(t, "@t:\n    $x := 1\n")

	path := filepath.Join(t.TempDir(), "out.vtc")

	if err := r.DumpFile(path); err != nil {
		t.Fatalf("DumpFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != "@t:\n    $x := 1\n" {
		t.Errorf("unexpected file contents:\n%s", data)
	}
}

func TestToMap(t *testing.T) {
	source := "@t:\n" +
		"    $x := 1\n" +
		"    $alias := %x\n" +
		"    $sum := [std_add_int!!, 1, 2]\n"

	r := load(t, source)

	m, err := r.ToMap()
	if err != nil {
		t.Fatalf("ToMap: %v", err)
	}

	vars, ok := m["t"].(map[string]any)
	if !ok {
		t.Fatalf("expected namespace map, got %T", m["t"])
	}

	if vars["x"] != int64(1) {
		t.Errorf("x: got %v", vars["x"])
	}

	// References and calls export resolved.
	if vars["alias"] != int64(1) {
		t.Errorf("alias: got %v", vars["alias"])
	}

	if vars["sum"] != int64(3) {
		t.Errorf("sum: got %v", vars["sum"])
	}
}

func TestToMap_UnresolvableFails(t *testing.T) {
	r := load(t, "@t:\n    $dangling := &ghost.var\n")

	if _, err := r.ToMap(); err == nil {
		t.Error("expected resolution error")
	}
}

func TestExportJSON(t *testing.T) {
	source := "@t:\n" +
		"    $name := \"vtc\"\n" +
		"    $count := 2\n" +
		"    $items := [1, [2, 3]]\n" +
		"    $nothing := Nil\n"

	r := load(t, source)

	var buf bytes.Buffer

	if err := r.ExportJSON(context.Background(), &buf, 2); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var decoded map[string]map[string]any

	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	vars := decoded["t"]

	if vars["name"] != "vtc" {
		t.Errorf("name: got %v", vars["name"])
	}

	if vars["count"] != float64(2) {
		t.Errorf("count: got %v", vars["count"])
	}

	if vars["nothing"] != nil {
		t.Errorf("nothing: got %v", vars["nothing"])
	}

	items, ok := vars["items"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("items: got %v", vars["items"])
	}

	if nested, ok := items[1].([]any); !ok || len(nested) != 2 {
		t.Errorf("nested items: got %v", items[1])
	}

	// Indented output spans multiple lines.
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected indented output")
	}
}

func TestExportYAML(t *testing.T) {
	r := load(t, "@t:\n    $name := \"vtc\"\n    $count := 2\n")

	var indented bytes.Buffer

	if err := r.ExportYAML(context.Background(), &indented, 2); err != nil {
		t.Fatalf("ExportYAML: %v", err)
	}

	out := indented.String()

	if !strings.Contains(out, "name: vtc") {
		t.Errorf("missing scalar in output:\n%s", out)
	}

	if !strings.Contains(out, "count: 2") {
		t.Errorf("missing integer in output:\n%s", out)
	}

	var flow bytes.Buffer

	if err := r.ExportYAML(context.Background(), &flow, 0); err != nil {
		t.Fatalf("ExportYAML flow: %v", err)
	}

	if !strings.Contains(flow.String(), "{") {
		t.Errorf("expected flow style output:\n%s", flow.String())
	}
}

func TestDump_EmptyNamespace(t *testing.T) {
	r := New()

	if err := r.AddNamespace("empty"); err != nil {
		t.Fatal(err)
	}

	r.Add("full", "x", lang.NewInteger(1))

	want := "@empty:\n\n@full:\n    $x := 1\n"
	if got := r.Source(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
