package executors

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"signalexecutor/src/model"
)

type recordingExecutor struct {
	mu      sync.Mutex
	signals []model.TradeSignal
	err     error
}

func (r *recordingExecutor) ExecuteSignal(ctx context.Context, signal model.TradeSignal) (*model.ExecutionReport, error) {
	r.mu.Lock()
	r.signals = append(r.signals, signal)
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return &model.ExecutionReport{
		MarketID: "ETH_USDT",
		Quantity: decimal.RequireFromString("0.8333"),
	}, nil
}

func (r *recordingExecutor) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.signals)
}

func testSignal(symbol string) model.TradeSignal {
	return model.TradeSignal{
		RawSymbol:      symbol,
		Direction:      model.DirectionLong,
		ReferencePrice: decimal.RequireFromString("3000"),
	}
}

func waitDone(t *testing.T, task *Task) {
	t.Helper()
	select {
	case <-task.Done:
	case <-time.After(5 * time.Second):
		t.Fatal("task did not complete in time")
	}
}

func TestDispatcherRunsEnqueuedSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	executor := &recordingExecutor{}
	d := NewDispatcher(executor, 4, 1)
	d.Start(ctx)

	task, err := d.Enqueue(testSignal("ETHUSDT.P"))
	if err != nil {
		t.Fatalf("Enqueue returned %v", err)
	}
	waitDone(t, task)

	if task.Err != nil {
		t.Fatalf("task.Err = %v, want nil", task.Err)
	}
	if task.Report == nil || task.Report.MarketID != "ETH_USDT" {
		t.Fatalf("task.Report = %+v, want report for ETH_USDT", task.Report)
	}
	if executor.count() != 1 {
		t.Fatalf("executor ran %d times, want 1", executor.count())
	}
}

func TestDispatcherPropagatesExecutionError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wantErr := &model.SizingError{Reason: "insufficient balance"}
	d := NewDispatcher(&recordingExecutor{err: wantErr}, 4, 1)
	d.Start(ctx)

	task, err := d.Enqueue(testSignal("ETHUSDT"))
	if err != nil {
		t.Fatalf("Enqueue returned %v", err)
	}
	waitDone(t, task)

	var sizing *model.SizingError
	if !errors.As(task.Err, &sizing) {
		t.Fatalf("task.Err = %v, want SizingError", task.Err)
	}
	if task.Report != nil {
		t.Fatalf("task.Report = %+v, want nil on failure", task.Report)
	}
}

// Queue refusal must be immediate, never blocking the webhook request.
func TestDispatcherQueueFull(t *testing.T) {
	// Not started: nothing drains the queue of size 1.
	d := NewDispatcher(&recordingExecutor{}, 1, 1)

	if _, err := d.Enqueue(testSignal("ETHUSDT")); err != nil {
		t.Fatalf("first Enqueue returned %v", err)
	}
	if _, err := d.Enqueue(testSignal("BTCUSDT")); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("second Enqueue returned %v, want ErrQueueFull", err)
	}
}

func TestDispatcherDrainsBacklogAcrossWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	executor := &recordingExecutor{}
	d := NewDispatcher(executor, 8, 3)
	d.Start(ctx)

	tasks := make([]*Task, 0, 6)
	for _, symbol := range []string{"ETHUSDT", "BTCUSDT", "SOLUSDT", "XRPUSDT", "ADAUSDT", "DOGEUSDT"} {
		task, err := d.Enqueue(testSignal(symbol))
		if err != nil {
			t.Fatalf("Enqueue(%s) returned %v", symbol, err)
		}
		tasks = append(tasks, task)
	}
	for _, task := range tasks {
		waitDone(t, task)
	}

	if executor.count() != len(tasks) {
		t.Fatalf("executor ran %d times, want %d", executor.count(), len(tasks))
	}
}

func TestDispatcherStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	d := NewDispatcher(&recordingExecutor{}, 4, 2)
	d.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not stop after cancel")
	}
}

// Tasks still queued when the workers stop must have Done closed with a
// cancellation error, never left dangling for a waiter.
func TestDispatcherFailsQueuedTasksOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executor := &recordingExecutor{}
	d := NewDispatcher(executor, 4, 2)

	taskA, err := d.Enqueue(testSignal("ETHUSDT"))
	if err != nil {
		t.Fatalf("Enqueue returned %v", err)
	}
	taskB, err := d.Enqueue(testSignal("BTCUSDT"))
	if err != nil {
		t.Fatalf("Enqueue returned %v", err)
	}

	d.Start(ctx)
	d.Wait()

	for _, task := range []*Task{taskA, taskB} {
		select {
		case <-task.Done:
		default:
			t.Fatalf("Done not closed for %s", task.Signal.RawSymbol)
		}
		if !errors.Is(task.Err, context.Canceled) {
			t.Fatalf("task.Err = %v, want context.Canceled", task.Err)
		}
		if task.Report != nil {
			t.Fatalf("task.Report = %+v, want nil for a task failed at shutdown", task.Report)
		}
	}
	if executor.count() != 0 {
		t.Fatalf("executor ran %d times, want 0 after pre-cancelled start", executor.count())
	}
}

func TestDispatcherDefaultsInvalidSizes(t *testing.T) {
	d := NewDispatcher(&recordingExecutor{}, 0, 0)
	if cap(d.queue) != 64 {
		t.Fatalf("queue capacity = %d, want default 64", cap(d.queue))
	}
	if d.workers != 1 {
		t.Fatalf("workers = %d, want default 1", d.workers)
	}
}
