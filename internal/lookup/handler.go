// Package lookup wires a trigger control to an output element through an IP
// provider. Every activation performs one independent lookup; there is no
// queuing, no cancellation and the last response to arrive wins.
package lookup

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Flarenzy/whats-my-ip/internal/domain"
)

// FailureLabel is the message of the record logged for a failed activation.
const FailureLabel = "Error:"

// Trigger is a control that can be activated by the user.
type Trigger interface {
	OnActivate(fn func())
}

// Output is a text-bearing element whose content is replaced wholesale.
type Output interface {
	SetText(text string)
}

type Handler struct {
	trigger  Trigger
	output   Output
	provider domain.IPProvider
	logger   *slog.Logger

	inflight sync.WaitGroup
}

func NewHandler(trigger Trigger, output Output, provider domain.IPProvider, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Handler{
		trigger:  trigger,
		output:   output,
		provider: provider,
		logger:   logger,
	}
}

// Register attaches the handler to its trigger.
func (h *Handler) Register() {
	h.trigger.OnActivate(func() {
		h.Activate()
	})
}

// Activate starts a lookup and returns without waiting for it.
func (h *Handler) Activate() *Task {
	task := newTask(domain.NewActivationID())
	h.inflight.Go(func() {
		h.run(task)
	})
	return task
}

// Wait blocks until every activation started so far has finished or ctx
// ends. It does not abort running lookups.
func (h *Handler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handler) run(task *Task) {
	ctx := context.Background()

	result, err := h.provider.FetchIP(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, FailureLabel, "activation", string(task.ID), "err", err.Error())
		task.finish(domain.LookupResult{}, err)
		return
	}

	h.output.SetText(result.Display())
	task.finish(result, nil)
}
