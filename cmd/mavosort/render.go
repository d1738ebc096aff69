package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mavosort/internal/collection"
	errs "mavosort/internal/errors"
	"mavosort/internal/paths"
	"mavosort/internal/storage"
)

var (
	renderSort    string
	renderGroup   string
	renderNoState bool
	renderItems   itemFlags
	renderOutput  outputFlags
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Sort and group items, skipping output that has not changed",
	Long: `Render applies --sort then --group to <file> and writes the result.

The criteria signatures and a digest of the input are recorded in the state
store (.mavosort/state.db). A later render with the same input and equivalent
criteria writes nothing.

Examples:
  mavosort render people.json --sort "+age" --group city -o people.out.json
  mavosort render people.json --sort "+age" --no-state`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderSort, "sort", "", "Sort criteria")
	renderCmd.Flags().StringVar(&renderGroup, "group", "", "Group criteria")
	renderCmd.Flags().BoolVar(&renderNoState, "no-state", false, "Do not read or write the state store")
	renderItems.register(renderCmd)
	registerOutputFlags(renderCmd, &renderOutput)
	rootCmd.AddCommand(renderCmd)
}

// renderTarget bundles what render and watch share.
type renderTarget struct {
	file  string
	coll  *collection.Collection
	items *itemFlags
	crit  collection.Criteria
	db    *storage.DB
}

func newRenderTarget(file string, items *itemFlags, sortSpec, groupSpec string, useState bool) (*renderTarget, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	name, err := paths.CanonicalizePath(file, root)
	if err != nil {
		name = paths.NormalizePath(file)
	}

	opts := collection.Options{
		Engine:         newEngine(),
		Normalizer:     newNormalizer(),
		Logger:         logger,
		StrictParallel: strictParallel(),
	}

	t := &renderTarget{file: file, items: items}
	if useState && appConfig.State.Enabled {
		db, err := storage.Open(appConfig.StatePath(root), logger)
		if err != nil {
			return nil, errs.New(errs.StateUnavailable, "cannot open state store", err)
		}
		t.db = db
		opts.Store = storage.NewCollectionRepository(db)
	}
	t.coll = collection.New(name, nil, opts)
	t.crit = collection.Criteria{Sort: sortSpec, Group: groupSpec}

	if err := t.reload(); err != nil {
		t.close()
		return nil, err
	}
	return t, nil
}

// reload re-reads the input and parallel files into the collection.
func (t *renderTarget) reload() error {
	items, digest, err := t.items.loadItems(t.file)
	if err != nil {
		return err
	}
	extra, err := t.items.extraKeys()
	if err != nil {
		return err
	}
	t.coll.SetItems(items, digest)
	t.crit.Extra = extra
	return nil
}

func (t *renderTarget) render(out outputFlags, cmd *cobra.Command) (bool, error) {
	w, closeOut, err := out.writer(cmd.OutOrStdout())
	if err != nil {
		return false, err
	}
	rendered, err := t.coll.Render(w, t.crit)
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	return rendered, err
}

func (t *renderTarget) close() {
	if t.db != nil {
		t.db.Close()
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	t, err := newRenderTarget(args[0], &renderItems, renderSort, renderGroup, !renderNoState)
	if err != nil {
		return err
	}
	defer t.close()

	rendered, err := t.render(renderOutput, cmd)
	if err != nil {
		return err
	}
	if !rendered {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: unchanged\n", t.coll.Name())
	}
	return nil
}
