package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petasbytes/frontogether/internal/safety"
	"github.com/petasbytes/frontogether/tools"
)

func newToolsCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the JSON schemas of the enabled tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			names := cfg.Tools
			if all {
				names = tools.BuiltinNames()
			}
			root, err := safety.ResolveRoot(cfg.Workdir)
			if err != nil {
				return err
			}
			defs, err := tools.Registry(root, names...)
			if err != nil {
				return err
			}
			return printSchemas(cmd, defs)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include built-in tools that are not enabled")
	return cmd
}

func printSchemas(cmd *cobra.Command, defs []tools.ToolDefinition) error {
	type entry struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Parameters  map[string]any `json:"parameters"`
	}
	out := make([]entry, 0, len(defs))
	for _, d := range defs {
		out = append(out, entry{Name: d.Name, Description: d.Description, Parameters: d.InputSchema.Object()})
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}
