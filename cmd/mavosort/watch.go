package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mavosort/internal/watcher"
)

var (
	watchSort    string
	watchGroup   string
	watchNoState bool
	watchItems   itemFlags
	watchOutput  outputFlags
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-render whenever the input or parallel key files change",
	Long: `Watch renders <file> like "render", then polls it and every --parallel
file for changes. Changes are debounced (watch.debounceMs) and each batch
re-reads the input and renders again if the result changed.

Examples:
  mavosort watch people.json --sort "+age" --group city -o view.json
  mavosort watch people.yaml --sort name --format human`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchSort, "sort", "", "Sort criteria")
	watchCmd.Flags().StringVar(&watchGroup, "group", "", "Group criteria")
	watchCmd.Flags().BoolVar(&watchNoState, "no-state", false, "Do not read or write the state store")
	watchItems.register(watchCmd)
	registerOutputFlags(watchCmd, &watchOutput)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	t, err := newRenderTarget(args[0], &watchItems, watchSort, watchGroup, !watchNoState)
	if err != nil {
		return err
	}
	defer t.close()

	if _, err := t.render(watchOutput, cmd); err != nil {
		return err
	}

	w := watcher.New(watcher.Config{
		PollInterval: time.Duration(appConfig.Watch.PollIntervalMs) * time.Millisecond,
		Debounce:     time.Duration(appConfig.Watch.DebounceMs) * time.Millisecond,
	}, logger, func(events []watcher.Event) {
		logger.Info("Input changed", "events", len(events), "first", events[0].Path)
		if err := t.reload(); err != nil {
			// Keep watching: the file may be mid-write.
			printError(cmd.ErrOrStderr(), err)
			return
		}
		if _, err := t.render(watchOutput, cmd); err != nil {
			printError(cmd.ErrOrStderr(), err)
		}
	})
	w.Add(args[0])
	for _, f := range watchItems.parallelFiles() {
		w.Add(f)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
