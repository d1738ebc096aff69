package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mavosort/internal/engine"
	errs "mavosort/internal/errors"
	"mavosort/internal/input"
	"mavosort/internal/livedata"
)

// itemFlags are shared by every command that loads items.
type itemFlags struct {
	itemsPath   string
	inputFormat string
	live        bool
	parallel    []string
	index       int
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.itemsPath, "items-path", "", "Dotted path to the item list inside the document")
	cmd.Flags().StringVar(&f.inputFormat, "input-format", "", "Input format (json, yaml, toml); detected from the extension by default")
	cmd.Flags().BoolVar(&f.live, "live", false, "Wrap items as live data nodes")
	cmd.Flags().StringArrayVar(&f.parallel, "parallel", nil, "Parallel key file, optionally suffixed :+ or :- (repeatable)")
	cmd.Flags().IntVar(&f.index, "index", 0, "Order whole items: 1 ascending, -1 descending")
}

func (f *itemFlags) options() input.Options {
	return input.Options{Format: f.inputFormat, ItemsPath: f.itemsPath}
}

// loadItems reads path and returns its items and content digest.
func (f *itemFlags) loadItems(path string) ([]engine.Item, string, error) {
	doc, err := input.Load(path, f.options())
	if err != nil {
		return nil, "", err
	}
	logger.Debug("Loaded items", "path", path, "format", string(doc.Format), "items", len(doc.Items))

	if !f.live {
		return engine.Items(doc.Items), doc.Digest, nil
	}

	nodes, err := livedata.New(doc.Root).Items(listPath(doc.Root, f.itemsPath))
	if err != nil {
		return nil, "", errs.New(errs.InputUnreadable, path+": "+err.Error(), nil)
	}
	items := make([]engine.Item, len(nodes))
	for i, n := range nodes {
		items[i] = engine.Live(n)
	}
	return items, doc.Digest, nil
}

// listPath is the tree path of the item list selected by input.SelectItems.
func listPath(root any, itemsPath string) string {
	if itemsPath != "" {
		return itemsPath
	}
	if _, ok := root.([]any); ok {
		return ""
	}
	return input.DefaultItemsKey
}

// extraKeys loads --parallel files and the --index key, in that order.
func (f *itemFlags) extraKeys() ([]engine.Key, error) {
	var keys []engine.Key
	for _, spec := range f.parallel {
		path, dir, err := parseParallelSpec(spec)
		if err != nil {
			return nil, err
		}
		values, err := input.LoadValues(path, input.Options{})
		if err != nil {
			return nil, err
		}
		keys = append(keys, engine.ParallelKey(values, dir))
	}
	if f.index != 0 {
		keys = append(keys, engine.IndexKey(f.index))
	}
	return keys, nil
}

// parallelFiles returns the files named by --parallel.
func (f *itemFlags) parallelFiles() []string {
	var files []string
	for _, spec := range f.parallel {
		if path, _, err := parseParallelSpec(spec); err == nil {
			files = append(files, path)
		}
	}
	return files
}

// parseParallelSpec splits "file[:+|:-|:asc|:desc]".
func parseParallelSpec(spec string) (string, engine.Direction, error) {
	if i := strings.LastIndex(spec, ":"); i >= 0 {
		if dir, err := engine.ParseDirection(spec[i+1:]); err == nil && spec[i+1:] != "" {
			spec = spec[:i]
			if spec == "" {
				return "", 0, errs.New(errs.InputUnreadable, "empty parallel key file", nil)
			}
			return spec, dir, nil
		}
	}
	if spec == "" {
		return "", 0, errs.New(errs.InputUnreadable, "empty parallel key file", nil)
	}
	return spec, engine.DirectionDefault, nil
}

// checkParallel enforces sort.parallelMismatch=error before any work.
func checkParallel(e *engine.Engine, n int, keys []engine.Key) error {
	if !strictParallel() {
		return nil
	}
	if err := e.Validate(n, keys...); err != nil {
		return errs.New(errs.ParallelLengthMismatch, fmt.Sprintf("parallel key does not match %d items", n), err)
	}
	return nil
}

// leaves wraps sorted items as ungrouped nodes for output.
func leaves(items []engine.Item) []engine.Node {
	nodes := make([]engine.Node, len(items))
	for i, it := range items {
		nodes[i] = engine.Node{Leaf: it.Value()}
	}
	return nodes
}
