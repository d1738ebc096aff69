package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mavosort/internal/criteria"
)

var (
	signatureDigest bool
	signatureStrip  bool
)

var signatureCmd = &cobra.Command{
	Use:   "signature <criteria>...",
	Short: "Print the normalized criteria signature",
	Long: `Normalize sort or group criteria and print their canonical signature.
Equivalent criteria print the same signature.

Examples:
  mavosort signature "+a -b"          # +a -b
  mavosort signature +a -- -b c       # +a -b -c
  mavosort signature "a, b" --strip   # a b
  mavosort signature "+a -b" --digest`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSignature,
}

func init() {
	signatureCmd.Flags().BoolVar(&signatureDigest, "digest", false, "Print the blake2b-256 digest instead")
	signatureCmd.Flags().BoolVar(&signatureStrip, "strip", false, "Drop direction sigils")
	rootCmd.AddCommand(signatureCmd)
}

func runSignature(cmd *cobra.Command, args []string) error {
	n := newNormalizer()

	var line string
	switch {
	case signatureStrip:
		line = strings.Join(n.Normalize(args, false), " ")
	case signatureDigest:
		line = criteria.Digest(n.Signature(args))
	default:
		line = n.Signature(args)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), line)
	return err
}
