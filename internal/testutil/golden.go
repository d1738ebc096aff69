package testutil

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// updateGolden rewrites golden files instead of comparing.
// Use: go test ./... -run TestGolden -update
var updateGolden = flag.Bool("update", false, "update golden files")

// ShouldUpdate returns true if golden files should be updated.
func ShouldUpdate() bool {
	return *updateGolden
}

// CompareGolden compares got against testdata/golden/<name>, failing with a
// diff on mismatch. Trailing newlines are ignored.
func CompareGolden(t *testing.T, name string, got []byte) {
	t.Helper()

	goldenPath := GoldenPath(name)
	got = bytes.TrimRight(got, "\n")

	if *updateGolden {
		UpdateGolden(t, name, got)
		t.Logf("Updated golden: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Golden file missing: %s\n\nGot:\n%s\n\nRun with -update to create:\n  go test ./... -run %s -update",
				goldenPath, got, t.Name())
		}
		t.Fatalf("Failed to read golden file: %v", err)
	}
	expected = bytes.TrimRight(expected, "\n")

	if !bytes.Equal(got, expected) {
		diff := unifiedDiff(string(expected), string(got), goldenPath)
		t.Fatalf("Golden mismatch for %s:\n%s\n\nRun with -update to refresh:\n  go test ./... -run %s -update",
			name, diff, t.Name())
	}
}

// UpdateGolden writes data, plus a trailing newline, to the golden file.
func UpdateGolden(t *testing.T, name string, data []byte) {
	t.Helper()

	goldenPath := GoldenPath(name)
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
		t.Fatalf("Failed to create golden directory: %v", err)
	}
	if err := os.WriteFile(goldenPath, append(data, '\n'), 0o644); err != nil {
		t.Fatalf("Failed to write golden file: %v", err)
	}
}

// unifiedDiff produces a line-by-line diff with up to three lines of
// leading context per hunk.
func unifiedDiff(expected, got, path string) string {
	var buf bytes.Buffer

	expectedLines := strings.Split(expected, "\n")
	gotLines := strings.Split(got, "\n")

	fmt.Fprintf(&buf, "--- %s (expected)\n", path)
	fmt.Fprintf(&buf, "+++ %s (got)\n", path)

	n := max(len(expectedLines), len(gotLines))

	var hunk []string
	hunkStart := -1
	flush := func() {
		if len(hunk) > 0 {
			fmt.Fprintf(&buf, "@@ line %d @@\n", hunkStart+1)
			buf.WriteString(strings.Join(hunk, "\n"))
			buf.WriteByte('\n')
		}
		hunk = nil
		hunkStart = -1
	}

	for i := 0; i < n; i++ {
		var exp, cur string
		expOK, curOK := i < len(expectedLines), i < len(gotLines)
		if expOK {
			exp = expectedLines[i]
		}
		if curOK {
			cur = gotLines[i]
		}

		if expOK && curOK && exp == cur {
			if hunkStart >= 0 {
				hunk = append(hunk, " "+exp)
				if len(hunk) > 6 {
					flush()
				}
			}
			continue
		}

		if hunkStart < 0 {
			hunkStart = i
			for j := max(0, i-3); j < i && j < len(expectedLines); j++ {
				hunk = append(hunk, " "+expectedLines[j])
			}
		}
		if expOK {
			hunk = append(hunk, "-"+exp)
		}
		if curOK {
			hunk = append(hunk, "+"+cur)
		}
	}
	flush()

	return buf.String()
}
