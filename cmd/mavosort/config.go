package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"mavosort/internal/config"
	"mavosort/internal/output"
)

var (
	configFormat   string
	configShowDiff bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect mavosort configuration",
	Long:  "View the configuration loaded from .mavosort/config.{json,yaml,toml}, --config and MAVOSORT_* variables",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the effective configuration.

Examples:
  mavosort config show                 # Pretty-print current config
  mavosort config show --format json   # JSON output
  mavosort config show --diff          # Only show non-default values`,
	RunE: runConfigShow,
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "human", "Output format (human, json, yaml, toml)")
	configShowCmd.Flags().BoolVar(&configShowDiff, "diff", false, "Only show non-default values")

	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigShowResponse is the response format for config show
type ConfigShowResponse struct {
	ConfigPath   string         `json:"configPath,omitempty"`
	UsedDefaults bool           `json:"usedDefaults"`
	Config       map[string]any `json:"config"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	current, err := flatten(appConfig)
	if err != nil {
		return err
	}
	defaults, err := flatten(config.DefaultConfig())
	if err != nil {
		return err
	}
	if configShowDiff {
		for k, v := range current {
			if fmt.Sprint(v) == fmt.Sprint(defaults[k]) {
				delete(current, k)
			}
		}
	}

	if configFormat == "human" {
		printConfigHuman(cmd.OutOrStdout(), current, defaults)
		return nil
	}

	format, err := output.ParseFormat(configFormat)
	if err != nil {
		return err
	}
	resp := ConfigShowResponse{
		ConfigPath:   appSource,
		UsedDefaults: appSource == "",
		Config:       current,
	}
	data, err := output.Encode(resp, format, 2)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(data), "\n"))
	return nil
}

func printConfigHuman(w io.Writer, current, defaults map[string]any) {
	fmt.Fprintln(w, "mavosort Configuration")
	fmt.Fprintln(w, strings.Repeat("─", 50))
	if appSource == "" {
		fmt.Fprintln(w, "Source: defaults (no config file found)")
	} else {
		fmt.Fprintf(w, "Source: %s\n", appSource)
	}
	fmt.Fprintln(w)

	keys := make([]string, 0, len(current))
	for k := range current {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		modified := ""
		if fmt.Sprint(current[k]) != fmt.Sprint(defaults[k]) {
			modified = fmt.Sprintf(" (default: %v)", defaults[k])
		}
		fmt.Fprintf(w, "%s: %v%s\n", k, current[k], modified)
	}
}

// flatten turns a config into dotted keys using its json names.
func flatten(cfg *config.Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}

	flat := make(map[string]any)
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			if sub, ok := v.(map[string]any); ok {
				walk(prefix+k+".", sub)
				continue
			}
			flat[prefix+k] = v
		}
	}
	walk("", tree)
	return flat, nil
}
