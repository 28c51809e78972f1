package lookup

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Flarenzy/whats-my-ip/internal/domain"
	"github.com/Flarenzy/whats-my-ip/internal/ipify"
)

type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *captureHandler) Handle(_ context.Context, record slog.Record) error {
	clone := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		clone.AddAttrs(attr)
		return true
	})
	h.mu.Lock()
	h.records = append(h.records, clone)
	h.mu.Unlock()
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler {
	return h
}

func (h *captureHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *captureHandler) errorRecords() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []slog.Record
	for _, r := range h.records {
		if r.Level == slog.LevelError {
			out = append(out, r)
		}
	}
	return out
}

type fixture struct {
	button *Button
	output *TextElement
	logs   *captureHandler
	tasks  chan *Task
}

// newFixture registers a handler against an endpoint served by fn and
// records every task started through the button.
func newFixture(t *testing.T, fn http.HandlerFunc) *fixture {
	t.Helper()

	server := httptest.NewServer(fn)
	t.Cleanup(server.Close)

	return newFixtureForURL(t, server.URL+"/?format=json")
}

func newFixtureForURL(t *testing.T, endpoint string) *fixture {
	t.Helper()

	client, err := ipify.NewClient(ipify.Config{URL: endpoint})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	f := &fixture{
		button: &Button{},
		output: NewTextElement("stale"),
		logs:   &captureHandler{},
		tasks:  make(chan *Task, 8),
	}
	handler := NewHandler(f.button, f.output, client, slog.New(f.logs))
	f.button.OnActivate(func() {
		f.tasks <- handler.Activate()
	})
	return f
}

func (f *fixture) click(t *testing.T) *Task {
	t.Helper()
	f.button.Click()
	select {
	case task := <-f.tasks:
		return task
	case <-time.After(time.Second):
		t.Fatal("click did not start a task")
		return nil
	}
}

func wait(t *testing.T, task *Task) (domain.LookupResult, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := task.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("task did not complete")
	}
	return result, err
}

func ipBody(ip string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ip":"` + ip + `"}`))
	}
}

func TestActivationRendersAddress(t *testing.T) {
	f := newFixture(t, ipBody("203.0.113.7"))

	result, err := wait(t, f.click(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.IP != "203.0.113.7" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := f.output.Text(); got != "Your IP Address is: 203.0.113.7" {
		t.Fatalf("unexpected output: %q", got)
	}
	if n := len(f.logs.errorRecords()); n != 0 {
		t.Fatalf("expected no error records, got %d", n)
	}
}

func TestNetworkFailureLeavesOutputAndLogsOnce(t *testing.T) {
	server := httptest.NewServer(ipBody("203.0.113.7"))
	endpoint := server.URL
	server.Close()
	f := newFixtureForURL(t, endpoint)

	_, err := wait(t, f.click(t))
	if !errors.Is(err, domain.ErrLookupFailure) {
		t.Fatalf("expected ErrLookupFailure, got %v", err)
	}
	if got := f.output.Text(); got != "stale" {
		t.Fatalf("expected output to be untouched, got %q", got)
	}

	records := f.logs.errorRecords()
	if len(records) != 1 {
		t.Fatalf("expected 1 error record, got %d", len(records))
	}
	if records[0].Message != FailureLabel {
		t.Fatalf("unexpected message: %q", records[0].Message)
	}
}

func TestMalformedJSONLeavesOutputAndLogsOnce(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := wait(t, f.click(t))
	if !errors.Is(err, domain.ErrLookupFailure) {
		t.Fatalf("expected ErrLookupFailure, got %v", err)
	}
	if got := f.output.Text(); got != "stale" {
		t.Fatalf("expected output to be untouched, got %q", got)
	}
	if n := len(f.logs.errorRecords()); n != 1 {
		t.Fatalf("expected 1 error record, got %d", n)
	}
}

func TestMissingFieldRendersUndefined(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})

	if _, err := wait(t, f.click(t)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := f.output.Text(); got != "Your IP Address is: undefined" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestRepeatedActivationsAreIdempotent(t *testing.T) {
	f := newFixture(t, ipBody("198.51.100.20"))

	if _, err := wait(t, f.click(t)); err != nil {
		t.Fatalf("first activation: %v", err)
	}
	first := f.output.Text()

	if _, err := wait(t, f.click(t)); err != nil {
		t.Fatalf("second activation: %v", err)
	}
	if second := f.output.Text(); second != first {
		t.Fatalf("expected %q after second activation, got %q", first, second)
	}
}

func TestOverlappingActivationsLastResponseWins(t *testing.T) {
	var (
		mu      sync.Mutex
		calls   int
		arrived = make(chan int, 2)
		release = make(chan struct{})
	)
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		arrived <- n

		if n == 1 {
			<-release
			ipBody("1.1.1.1")(w, r)
			return
		}
		time.Sleep(10 * time.Millisecond)
		ipBody("2.2.2.2")(w, r)
	})
	var once sync.Once
	releaseSlow := func() { once.Do(func() { close(release) }) }
	t.Cleanup(releaseSlow)

	slow := f.click(t)
	if n := <-arrived; n != 1 {
		t.Fatalf("expected slow request first, got %d", n)
	}
	fast := f.click(t)
	<-arrived

	if _, err := wait(t, fast); err != nil {
		t.Fatalf("fast activation: %v", err)
	}
	if got := f.output.Text(); got != "Your IP Address is: 2.2.2.2" {
		t.Fatalf("unexpected output after fast response: %q", got)
	}

	releaseSlow()
	if _, err := wait(t, slow); err != nil {
		t.Fatalf("slow activation: %v", err)
	}
	if got := f.output.Text(); got != "Your IP Address is: 1.1.1.1" {
		t.Fatalf("expected last response to win, got %q", got)
	}
}

func TestRegisterReactsToTrigger(t *testing.T) {
	server := httptest.NewServer(ipBody("192.0.2.1"))
	defer server.Close()

	client, err := ipify.NewClient(ipify.Config{URL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	button := &Button{}
	output := NewTextElement("")
	NewHandler(button, output, client, nil).Register()
	button.Click()

	deadline := time.Now().Add(5 * time.Second)
	for output.Text() == "" {
		if time.Now().After(deadline) {
			t.Fatal("output was never written")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := output.Text(); got != "Your IP Address is: 192.0.2.1" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestTaskWaitStopsAtContextWithoutAbortingLookup(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		ipBody("192.0.2.55")(w, r)
	})
	var once sync.Once
	releaseLookup := func() { once.Do(func() { close(release) }) }
	t.Cleanup(releaseLookup)

	task := f.click(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := task.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	releaseLookup()
	if _, err := wait(t, task); err != nil {
		t.Fatalf("expected lookup to complete, got %v", err)
	}
	if got := f.output.Text(); got != "Your IP Address is: 192.0.2.55" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestHandlerWaitBlocksUntilActivationsFinish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		ipBody("198.51.100.9")(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := ipify.NewClient(ipify.Config{URL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	button := &Button{}
	output := NewTextElement("stale")
	handler := NewHandler(button, output, client, nil)
	handler.Register()

	button.Click()
	button.Click()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := handler.Wait(ctx); err != nil {
		t.Fatalf("expected activations to finish, got %v", err)
	}
	if got := output.Text(); got != "Your IP Address is: 198.51.100.9" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestHandlerWaitStopsAtContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		ipBody("192.0.2.8")(w, r)
	}))
	var once sync.Once
	releaseLookup := func() { once.Do(func() { close(release) }) }
	t.Cleanup(server.Close)
	t.Cleanup(releaseLookup)

	client, err := ipify.NewClient(ipify.Config{URL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	output := NewTextElement("stale")
	handler := NewHandler(&Button{}, output, client, nil)

	if err := handler.Wait(context.Background()); err != nil {
		t.Fatalf("expected idle handler to return at once, got %v", err)
	}

	task := handler.Activate()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := handler.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	releaseLookup()
	if _, err := wait(t, task); err != nil {
		t.Fatalf("expected lookup to complete, got %v", err)
	}
	if got := output.Text(); got != "Your IP Address is: 192.0.2.8" {
		t.Fatalf("unexpected output: %q", got)
	}
}
