package main

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petasbytes/frontogether/internal/conversation"
	"github.com/petasbytes/frontogether/internal/session"
)

func newAskCmd(a *app) *cobra.Command {
	var attach string
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Run a single turn and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errors.New("empty message")
			}
			var att *conversation.Attachment
			if attach != "" {
				if att, err = loadPNG(attach); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			sess, err := a.openSession(ctx, cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			return newPrinter(os.Stdout).drain(sess.Submit(ctx, session.Input{Text: text, Attachment: att}))
		},
	}
	cmd.Flags().StringVar(&attach, "attach", "", "PNG image to send with the message")
	return cmd
}
