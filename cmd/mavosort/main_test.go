package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mavosort/internal/engine"
	errs "mavosort/internal/errors"
	"mavosort/internal/testutil"
)

func TestParseParallelSpec(t *testing.T) {
	tests := []struct {
		spec     string
		wantPath string
		wantDir  engine.Direction
		wantErr  bool
	}{
		{"ranks.json", "ranks.json", engine.DirectionDefault, false},
		{"ranks.json:+", "ranks.json", engine.Ascending, false},
		{"ranks.json:-", "ranks.json", engine.Descending, false},
		{"ranks.json:asc", "ranks.json", engine.Ascending, false},
		{"ranks.json:desc", "ranks.json", engine.Descending, false},
		{"dir:with:colons.json", "dir:with:colons.json", engine.DirectionDefault, false},
		{"", "", engine.DirectionDefault, true},
		{":+", "", engine.DirectionDefault, true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			path, dir, err := parseParallelSpec(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseParallelSpec(%q) should fail", tt.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseParallelSpec(%q) error = %v", tt.spec, err)
			}
			if path != tt.wantPath || dir != tt.wantDir {
				t.Errorf("parseParallelSpec(%q) = (%q, %v), want (%q, %v)", tt.spec, path, dir, tt.wantPath, tt.wantDir)
			}
		})
	}
}

func TestListPath(t *testing.T) {
	tests := []struct {
		name      string
		root      any
		itemsPath string
		want      string
	}{
		{"explicit", map[string]any{}, "data.people", "data.people"},
		{"bare array", []any{1, 2}, "", ""},
		{"object", map[string]any{"items": []any{}}, "", "items"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := listPath(tt.root, tt.itemsPath); got != tt.want {
				t.Errorf("listPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLeaves(t *testing.T) {
	nodes := leaves(engine.Items([]any{"a", "b"}))
	if len(nodes) != 2 {
		t.Fatalf("len = %d, want 2", len(nodes))
	}
	for i, want := range []string{"a", "b"} {
		if nodes[i].Group != nil || nodes[i].Leaf != want {
			t.Errorf("node %d = %+v, want leaf %q", i, nodes[i], want)
		}
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errs.New(errs.StateUnavailable, "cannot open state store", nil))
	got := buf.String()
	for _, want := range []string{"STATE_UNAVAILABLE", "Suggested fixes:", "$ mavosort render --no-state"} {
		if !strings.Contains(got, want) {
			t.Errorf("printError output missing %q:\n%s", want, got)
		}
	}

	buf.Reset()
	printError(&buf, errors.New("boom"))
	if buf.String() != "Error: boom\n" {
		t.Errorf("plain error = %q", buf.String())
	}
}

func TestLazyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	unused := &lazyFile{path: path}
	if err := unused.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file created without a write: %v", err)
	}

	f := &lazyFile{path: path}
	if _, err := f.Write([]byte("[]\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "[]\n" {
		t.Errorf("content = %q", data)
	}
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("mavosort %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestSignatureCommand(t *testing.T) {
	t.Setenv("MAVOSORT_HOME", t.TempDir())
	if got := run(t, "signature", "+a", "--", "-b", "c"); got != "+a -b -c\n" {
		t.Errorf("signature = %q, want %q", got, "+a -b -c\n")
	}
}

func TestSortCommand(t *testing.T) {
	t.Setenv("MAVOSORT_HOME", t.TempDir())
	file := filepath.Join(t.TempDir(), "people.json")
	data := `[{"name":"ann","age":30},{"name":"bob","age":40},{"name":"cid","age":20}]`
	if err := os.WriteFile(file, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	got := run(t, "sort", file, "--by", "+age", "--format", "json", "--indent", "0")
	cid, ann, bob := strings.Index(got, "cid"), strings.Index(got, "ann"), strings.Index(got, "bob")
	if cid < 0 || ann < 0 || bob < 0 || !(cid < ann && ann < bob) {
		t.Errorf("sort output out of order: %s", got)
	}
}

func TestConfigShowCommand(t *testing.T) {
	t.Setenv("MAVOSORT_HOME", t.TempDir())
	t.Setenv("MAVOSORT_OUTPUT_FORMAT", "yaml")

	got := run(t, "config", "show", "--format", "human", "--diff")
	if !strings.Contains(got, "output.format: yaml (default: json)") {
		t.Errorf("config show --diff missing override:\n%s", got)
	}
	if strings.Contains(got, "sort.defaultDirection") {
		t.Errorf("config show --diff listed a default value:\n%s", got)
	}
}

func TestGoldenGroup(t *testing.T) {
	t.Setenv("MAVOSORT_HOME", t.TempDir())
	people := testutil.Fixture(t, "people.json")

	tests := []struct {
		golden string
		format string
		indent string
	}{
		{"group_city.human", "human", "0"},
		{"group_city.json", "json", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.golden, func(t *testing.T) {
			got := run(t, "group", people, "--by", "+city", "--sort", "+age", "--format", tt.format, "--indent", tt.indent)
			testutil.CompareGolden(t, tt.golden, []byte(got))
		})
	}
}

func TestRenderCommandPerTarget(t *testing.T) {
	t.Setenv("MAVOSORT_HOME", t.TempDir())
	t.Setenv("MAVOSORT_STATE_PATH", filepath.Join(t.TempDir(), "state.db"))
	dir := t.TempDir()
	file := filepath.Join(dir, "people.json")
	if err := os.WriteFile(file, []byte(`[{"name":"ann"},{"name":"bob"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	a, b := filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")

	steps := []struct {
		name   string
		format string
		out    string
		want   bool
	}{
		{"json to stdout", "json", "-", true},
		{"json to stdout again", "json", "-", false},
		{"yaml to stdout", "yaml", "-", true},
		{"json to a", "json", a, true},
		{"json to a again", "json", a, false},
		{"json to b", "json", b, true},
	}
	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			stdout := run(t, "render", file, "--sort", "+name", "--group", "", "--format", step.format, "--indent", "0", "-o", step.out)
			rendered := stdout != ""
			if step.out != "-" {
				_, err := os.Stat(step.out)
				rendered = err == nil
				os.Remove(step.out)
			}
			if rendered != step.want {
				t.Errorf("rendered = %v, want %v (stdout %q)", rendered, step.want, stdout)
			}
		})
	}
}
