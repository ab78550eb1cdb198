package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petasbytes/frontogether/internal/conversation"
	"github.com/petasbytes/frontogether/internal/session"
)

func (a *app) runChat(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	// Ctrl-C cancels the running turn; a second one or Ctrl-D at the prompt
	// exits.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sess, err := a.openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)

	inputCh := make(chan string)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	go func() {
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

	out := newPrinter(os.Stdout)
	fmt.Fprintf(os.Stdout, "Chatting with %s (%s). /attach <file.png> adds an image, Ctrl-D quits.\n", cfg.Model, cfg.Provider)

	var pending *conversation.Attachment
	for {
		out.prompt()
		var line string
		var ok bool
		select {
		case <-sigch:
			fmt.Println("\nExiting...")
			return nil
		case line, ok = <-inputCh:
			if !ok {
				fmt.Println()
				return scanner.Err()
			}
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case strings.HasPrefix(line, "/attach "):
			att, err := loadPNG(strings.TrimSpace(strings.TrimPrefix(line, "/attach ")))
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			pending = att
			fmt.Println("attached; it will be sent with your next message")
			continue
		}

		turnCtx, cancelTurn := context.WithCancel(ctx)
		events := sess.Submit(turnCtx, session.Input{Text: line, Attachment: pending})
		pending = nil

		stop := make(chan struct{})
		go func() {
			select {
			case <-sigch:
				cancelTurn()
			case <-stop:
			}
		}()
		err := out.drain(events)
		close(stop)
		cancelTurn()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}
