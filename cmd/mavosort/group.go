package main

import (
	"github.com/spf13/cobra"

	"mavosort/internal/collection"
)

var (
	groupBy     string
	groupSortBy string
	groupItems  itemFlags
	groupOutput outputFlags
)

var groupCmd = &cobra.Command{
	Use:   "group <file>",
	Short: "Group items into nested groups, one level per key",
	Long: `Sort the items in <file> by --sort, then fold them into nested groups by
--by. Groups appear in sorted order; items inside a group keep the --sort
order. Items with none of the group properties are left out.

Examples:
  mavosort group people.json --by "+city"
  mavosort group people.json --by "+country +city" --sort "-age" --format human`,
	Args: cobra.ExactArgs(1),
	RunE: runGroup,
}

func init() {
	groupCmd.Flags().StringVar(&groupBy, "by", "", "Group criteria, e.g. \"+country city\"")
	groupCmd.Flags().StringVar(&groupSortBy, "sort", "", "Sort criteria applied before grouping")
	groupItems.register(groupCmd)
	registerOutputFlags(groupCmd, &groupOutput)
	rootCmd.AddCommand(groupCmd)
}

func runGroup(cmd *cobra.Command, args []string) error {
	items, digest, err := groupItems.loadItems(args[0])
	if err != nil {
		return err
	}
	extra, err := groupItems.extraKeys()
	if err != nil {
		return err
	}

	c := collection.New(args[0], nil, collection.Options{
		Engine:         newEngine(),
		Normalizer:     newNormalizer(),
		Logger:         logger,
		StrictParallel: strictParallel(),
	})
	c.SetItems(items, digest)

	res, err := c.Apply(collection.Criteria{Sort: groupSortBy, Group: groupBy, Extra: extra})
	if err != nil {
		return err
	}

	w, closeOut, err := groupOutput.writer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := w.Materialize(res.Nodes); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}
