package executors

import (
	"context"
	"errors"
	"fmt"
	"sync"

	logger "github.com/sirupsen/logrus"

	"signalexecutor/src/model"
)

// SignalExecutor runs one trade signal end to end.
type SignalExecutor interface {
	ExecuteSignal(ctx context.Context, signal model.TradeSignal) (*model.ExecutionReport, error)
}

// ErrQueueFull is returned when the dispatcher cannot accept more work.
var ErrQueueFull = errors.New("dispatch queue full")

// Task is one queued signal. Done is closed after execution with Report and
// Err populated, so completion is observable even when no caller waits.
type Task struct {
	Signal model.TradeSignal

	Report *model.ExecutionReport
	Err    error
	Done   chan struct{}
}

// Dispatcher runs signals on background workers so the webhook can
// acknowledge immediately. Replaces fire-and-forget goroutines with a
// bounded queue and an explicit per-task completion signal.
type Dispatcher struct {
	executor SignalExecutor
	queue    chan *Task
	wg       sync.WaitGroup
	workers  int
}

func NewDispatcher(executor SignalExecutor, queueSize, workers int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{
		executor: executor,
		queue:    make(chan *Task, queueSize),
		workers:  workers,
	}
}

// Start launches the worker pool. Workers drain the queue until ctx is
// cancelled; Wait blocks until in-flight tasks finish.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
	logger.WithField("workers", d.workers).Info("signal dispatcher started")
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		// Cancellation wins over queued work so shutdown fails pending
		// tasks instead of starting them.
		select {
		case <-ctx.Done():
			d.drain(ctx, id)
			return
		default:
		}

		select {
		case <-ctx.Done():
			d.drain(ctx, id)
			return
		case task := <-d.queue:
			d.run(ctx, task)
		}
	}
}

// drain fails every task still queued at shutdown. Done must close for
// every enqueued task, including ones no worker got to run.
func (d *Dispatcher) drain(ctx context.Context, id int) {
	for {
		select {
		case task := <-d.queue:
			task.Err = fmt.Errorf("dispatcher stopped before execution: %w", ctx.Err())
			close(task.Done)
		default:
			logger.WithField("worker", id).Info("dispatcher worker stopped")
			return
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, task *Task) {
	report, err := d.executor.ExecuteSignal(ctx, task.Signal)
	task.Report = report
	task.Err = err
	close(task.Done)

	if err != nil {
		logger.WithError(err).WithFields(map[string]interface{}{
			"symbol": task.Signal.RawSymbol,
			"side":   task.Signal.Direction,
		}).Error("background signal execution failed")
		return
	}
	logger.WithFields(map[string]interface{}{
		"symbol":    task.Signal.RawSymbol,
		"side":      task.Signal.Direction,
		"market_id": report.MarketID,
		"qty":       report.Quantity.String(),
	}).Info("background signal execution completed")
}

// Enqueue submits a signal for background execution. Returns the task so a
// caller may wait on Done, or ErrQueueFull when the queue is saturated.
func (d *Dispatcher) Enqueue(signal model.TradeSignal) (*Task, error) {
	task := &Task{
		Signal: signal,
		Done:   make(chan struct{}),
	}
	select {
	case d.queue <- task:
		return task, nil
	default:
		return nil, ErrQueueFull
	}
}

// Wait blocks until all workers have exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
