package browser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jrsteele09/sgo-connect/login"
	"github.com/rs/zerolog/log"
)

// QuitCommand typed on its own line dismisses the login.
const QuitCommand = "q"

// Terminal is a login.Browser for headless use. It prints the login address and
// reads the addresses the user's real browser ended up on, one per line.
//
// Closing a view, or cancelling the ctx it was opened with, stops lines reaching
// its navigator. The goroutine reading input cannot interrupt a blocked read and
// only exits at the next line or at EOF.
type Terminal struct {
	in  *bufio.Scanner
	out io.Writer
	mu  sync.Mutex
}

var _ login.Browser = (*Terminal)(nil)

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewScanner(in), out: out}
}

func (t *Terminal) Open(ctx context.Context, url string, navigate login.Navigator) (login.View, error) {
	if _, err := fmt.Fprintf(t.out,
		"Open this address in a browser and sign in:\n\n  %s\n\nThen paste the irtech:// address the browser was sent to (%s to cancel):\n",
		url, QuitCommand); err != nil {
		return nil, fmt.Errorf("write prompt: %w", err)
	}

	v := &terminalView{
		dismissed: make(chan struct{}),
		closed:    make(chan struct{}),
	}
	go t.read(ctx, v, navigate)
	return v, nil
}

func (t *Terminal) read(ctx context.Context, v *terminalView, navigate login.Navigator) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for t.in.Scan() {
		if v.isClosed() || ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(t.in.Text())
		switch {
		case line == "":
			continue
		case strings.EqualFold(line, QuitCommand):
			v.dismiss()
			return
		case navigate(line):
			return
		default:
			fmt.Fprintln(t.out, "That is not the sign-in redirect, try again.")
		}
	}
	if err := t.in.Err(); err != nil {
		log.Err(err).Msg("Reading login input failed")
	}
	v.dismiss()
}

type terminalView struct {
	dismissOnce sync.Once
	closeOnce   sync.Once
	dismissed   chan struct{}
	closed      chan struct{}
}

func (v *terminalView) Dismissed() <-chan struct{} {
	return v.dismissed
}

func (v *terminalView) Close() error {
	v.closeOnce.Do(func() { close(v.closed) })
	return nil
}

func (v *terminalView) dismiss() {
	v.dismissOnce.Do(func() { close(v.dismissed) })
}

func (v *terminalView) isClosed() bool {
	select {
	case <-v.closed:
		return true
	default:
		return false
	}
}
