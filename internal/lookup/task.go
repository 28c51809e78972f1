package lookup

import (
	"context"

	"github.com/Flarenzy/whats-my-ip/internal/domain"
)

// Task is the pending outcome of one activation.
type Task struct {
	ID domain.ActivationID

	done   chan struct{}
	result domain.LookupResult
	err    error
}

func newTask(id domain.ActivationID) *Task {
	return &Task{
		ID:   id,
		done: make(chan struct{}),
	}
}

func (t *Task) finish(result domain.LookupResult, err error) {
	t.result = result
	t.err = err
	close(t.done)
}

// Done is closed once the output has been written or the failure logged.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task completes or ctx ends. Giving up on the wait
// does not abort the lookup.
func (t *Task) Wait(ctx context.Context) (domain.LookupResult, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return domain.LookupResult{}, ctx.Err()
	}
}
