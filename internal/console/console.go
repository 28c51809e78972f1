// Package console adapts a terminal to the lookup handler: every line read
// from the input is an activation and the output element is a writer.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Flarenzy/whats-my-ip/internal/domain"
	"github.com/Flarenzy/whats-my-ip/internal/lookup"
)

// Serve runs a lookup for every line read from in and prints results to
// out. Once in is exhausted it waits for the lookups still running, so
// piped input is answered before returning. Cancelling ctx stops both.
func Serve(ctx context.Context, in io.Reader, out io.Writer, provider domain.IPProvider, logger *slog.Logger) error {
	trigger := NewLineTrigger(in)
	handler := lookup.NewHandler(trigger, NewTextOutput(out), provider, logger)
	handler.Register()

	if err := trigger.Run(ctx); err != nil {
		return err
	}
	if err := handler.Wait(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

type LineTrigger struct {
	in io.Reader

	mu        sync.Mutex
	reactions []func()
}

func NewLineTrigger(in io.Reader) *LineTrigger {
	return &LineTrigger{in: in}
}

func (t *LineTrigger) OnActivate(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reactions = append(t.reactions, fn)
}

// Run activates once per input line until the input ends or ctx is done.
func (t *LineTrigger) Run(ctx context.Context) error {
	lines := make(chan struct{})
	errCh := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			select {
			case lines <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case <-lines:
			t.mu.Lock()
			reactions := append([]func(){}, t.reactions...)
			t.mu.Unlock()
			for _, fn := range reactions {
				fn()
			}
		}
	}
}

// TextOutput prints each new text on its own line.
type TextOutput struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTextOutput(out io.Writer) *TextOutput {
	return &TextOutput{out: out}
}

func (o *TextOutput) SetText(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = fmt.Fprintln(o.out, text)
}
