package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	errs "mavosort/internal/errors"
	"mavosort/internal/output"
)

// outputFlags select the encoding of command results.
type outputFlags struct {
	format string
	indent int
	out    string
}

func (f *outputFlags) writer(stdout io.Writer) (*output.Writer, func() error, error) {
	name := f.format
	if name == "" {
		name = appConfig.Output.Format
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, nil, err
	}
	indent := f.indent
	if indent < 0 {
		indent = appConfig.Output.Indent
	}

	if f.out == "" || f.out == "-" {
		return output.NewWriter(stdout, format, indent).WithDestination("-"), func() error { return nil }, nil
	}
	dest, err := filepath.Abs(f.out)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve %s: %w", f.out, err)
	}
	file := &lazyFile{path: f.out}
	return output.NewWriter(file, format, indent).WithDestination(dest), file.Close, nil
}

// lazyFile creates its file on the first write, so a skipped render
// leaves the previous output in place.
type lazyFile struct {
	path string
	f    *os.File
}

func (l *lazyFile) Write(p []byte) (int, error) {
	if l.f == nil {
		f, err := os.Create(l.path)
		if err != nil {
			return 0, fmt.Errorf("failed to create %s: %w", l.path, err)
		}
		l.f = f
	}
	return l.f.Write(p)
}

func (l *lazyFile) Close() error {
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// printError writes err, and for coded errors the suggested fixes.
func printError(w io.Writer, err error) {
	var se *errs.SortError
	if !errors.As(err, &se) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Error: %v\n", se))
	if len(se.SuggestedFixes) > 0 {
		b.WriteString("Suggested fixes:\n")
		for _, fix := range se.SuggestedFixes {
			b.WriteString(fmt.Sprintf("  - %s\n", fix.Description))
			if fix.Command != "" {
				b.WriteString(fmt.Sprintf("    $ %s\n", fix.Command))
			}
		}
	}
	fmt.Fprint(w, b.String())
}
