package main

import (
	"github.com/spf13/cobra"
)

var (
	sortBy     string
	sortItems  itemFlags
	sortOutput outputFlags
)

var sortCmd = &cobra.Command{
	Use:   "sort <file>",
	Short: "Sort items by property, parallel and index keys",
	Long: `Sort the items in <file> with a stable multi-key sort.

Keys apply in order: --by properties, then --parallel files, then --index.
Items that tie on every key keep their input order.

Examples:
  mavosort sort people.json --by "+age -name"
  mavosort sort data.yaml --items-path data.people --by city
  mavosort sort scores.json --parallel ranks.json:+
  mavosort sort numbers.json --index -1 --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSort,
}

func init() {
	sortCmd.Flags().StringVar(&sortBy, "by", "", "Property criteria, e.g. \"+price -name\"")
	sortItems.register(sortCmd)
	registerOutputFlags(sortCmd, &sortOutput)
	rootCmd.AddCommand(sortCmd)
}

func registerOutputFlags(cmd *cobra.Command, f *outputFlags) {
	cmd.Flags().StringVar(&f.format, "format", "", "Output format (json, yaml, toml, human); default output.format")
	cmd.Flags().IntVar(&f.indent, "indent", -1, "Indent width for json and yaml; default output.indent")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Write to a file instead of stdout")
}

func runSort(cmd *cobra.Command, args []string) error {
	items, _, err := sortItems.loadItems(args[0])
	if err != nil {
		return err
	}
	extra, err := sortItems.extraKeys()
	if err != nil {
		return err
	}

	e := newEngine()
	if err := checkParallel(e, len(items), extra); err != nil {
		return err
	}

	keys := append(newNormalizer().Keys(sortBy), extra...)
	sorted := e.Sort(items, keys...)

	w, closeOut, err := sortOutput.writer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := w.Materialize(leaves(sorted)); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}
