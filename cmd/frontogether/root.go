package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"provider":     "provider",
	"model":        "model",
	"base-url":     "base_url",
	"workdir":      "workdir",
	"max-depth":    "max_depth",
	"max-tokens":   "max_tokens",
	"token-budget": "token_budget",
	"tool-errors":  "tool_errors",
	"tools":        "tools",
	"log-level":    "log_level",
	"store":        "session.store",
	"session":      "session.id",
	"telemetry":    "telemetry.enabled",
}

type app struct {
	v          *viper.Viper
	configFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "frontogether",
		Short: "Chat with a model that writes files in the working directory",
		Long: `frontogether streams a conversation with an LLM and lets it create or
overwrite files in the working directory through the write_file tool.

Examples:
  frontogether                          # interactive chat
  frontogether ask "add a footer to index.html"
  frontogether ask --attach mock.png "build this page"
  frontogether tools                    # print tool schemas`,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runChat(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default ./frontogether.yaml)")
	pf.String("provider", "", "provider: openai or anthropic")
	pf.String("model", "", "model name")
	pf.String("base-url", "", "override the provider API base URL")
	pf.String("workdir", "", "directory the tools operate in (default cwd)")
	pf.Int("max-depth", 0, "maximum streaming calls per turn")
	pf.Int("max-tokens", 0, "maximum output tokens per call")
	pf.Int("token-budget", 0, "input token budget per call (0 sends the whole log)")
	pf.String("tool-errors", "", "abort or feedback")
	pf.StringSlice("tools", nil, "enabled tools")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("store", "", "session store: none, json or sqlite")
	pf.String("session", "", "session id")
	pf.Bool("telemetry", false, "write JSONL events")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		for name, key := range flagKeys {
			f := cmd.Flags().Lookup(name)
			if f == nil {
				continue
			}
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
		return nil
	}

	root.AddCommand(newAskCmd(a), newToolsCmd(a))
	return root
}
