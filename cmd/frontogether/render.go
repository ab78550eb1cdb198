package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/petasbytes/frontogether/internal/stream"
)

const (
	ansiYellow = "\u001b[93m"
	ansiBlue   = "\u001b[94m"
	ansiDim    = "\u001b[2m"
	ansiReset  = "\u001b[0m"
)

// printer writes turn progress as plain text. Colors are only used on a
// terminal.
type printer struct {
	w     io.Writer
	color bool

	inText  bool
	inTools bool
}

func newPrinter(f *os.File) *printer {
	return &printer{w: f, color: term.IsTerminal(int(f.Fd()))}
}

func (p *printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

// handle renders one event and returns the turn's error once it finishes.
func (p *printer) handle(ev stream.Event) (done bool, err error) {
	switch v := ev.(type) {
	case stream.TextFragment:
		if !p.inText {
			fmt.Fprint(p.w, "\n"+p.paint(ansiYellow, "assistant")+": ")
			p.inText = true
		}
		fmt.Fprint(p.w, v.Text)
	case stream.ToolStarted:
		fmt.Fprint(p.w, "\n"+p.paint(ansiDim, "func("+v.Name+")")+": ")
		p.inTools = true
		p.inText = false
	case stream.ToolProgress:
		fmt.Fprint(p.w, ".")
	case stream.Finalized:
		if p.inTools {
			fmt.Fprint(p.w, "\n")
		}
		p.inText, p.inTools = false, false
	case stream.ToolResult:
		if v.Message.IsError {
			fmt.Fprintf(p.w, "%s\n", p.paint(ansiDim, "tool "+v.Message.Name+" failed: "+v.Message.Content))
		}
	case stream.TurnFinished:
		fmt.Fprintf(p.w, "\n\ncost: %.6f\n", v.Cost)
		return true, v.Err
	}
	return false, nil
}

// drain renders events until the channel closes and returns the turn error.
func (p *printer) drain(events <-chan stream.Event) error {
	var turnErr error
	for ev := range events {
		if done, err := p.handle(ev); done {
			turnErr = err
		}
	}
	return turnErr
}

func (p *printer) prompt() {
	fmt.Fprint(p.w, p.paint(ansiBlue, "you")+": ")
}
