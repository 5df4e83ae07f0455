// Package workers provides the periodic batch runners. Both workers
// wrap stateless, re-runnable service entry points; there is no job
// state to recover after a restart.
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/umtcnbyndr/eczane-crm/internal/services"
)

// DefaultTaskGenerationInterval is used when no interval is configured.
const DefaultTaskGenerationInterval = 6 * time.Hour

// TaskGenerationWorker periodically runs the task generation engine.
type TaskGenerationWorker struct {
	generator *services.TaskGeneratorService
	interval  time.Duration
	logger    *logrus.Logger
	stopChan  chan struct{}
	doneChan  chan struct{}
	mu        sync.Mutex
	running   bool
	stats     GenerationStats
}

// GenerationStats tracks generation run statistics.
type GenerationStats struct {
	Runs            int64     `json:"runs"`
	TasksCreated    int64     `json:"tasks_created"`
	CustomersFailed int64     `json:"customers_failed"`
	LastRunAt       time.Time `json:"last_run_at,omitempty"`
	LastRunDuration string    `json:"last_run_duration,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
}

// NewTaskGenerationWorker creates a new task generation worker.
func NewTaskGenerationWorker(generator *services.TaskGeneratorService, interval time.Duration, logger *logrus.Logger) *TaskGenerationWorker {
	if interval == 0 {
		interval = DefaultTaskGenerationInterval
	}

	return &TaskGenerationWorker{
		generator: generator,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start begins the generation loop.
func (w *TaskGenerationWorker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run()
	w.logger.WithField("interval", w.interval).Info("Task generation worker started")
}

// Stop stops the generation loop and waits for it to drain.
func (w *TaskGenerationWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	<-w.doneChan
	w.logger.Info("Task generation worker stopped")
}

// IsRunning returns whether the worker loop is active.
func (w *TaskGenerationWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Stats returns a snapshot of the run statistics.
func (w *TaskGenerationWorker) Stats() GenerationStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *TaskGenerationWorker) run() {
	defer close(w.doneChan)

	// Initial run on startup so a fresh deploy gets tasks immediately.
	w.runOnce(context.Background())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.runOnce(context.Background())
		}
	}
}

func (w *TaskGenerationWorker) runOnce(ctx context.Context) {
	start := time.Now()
	created, failed, err := w.generator.GenerateAll(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.Runs++
	w.stats.TasksCreated += int64(created)
	w.stats.CustomersFailed += int64(failed)
	w.stats.LastRunAt = start
	w.stats.LastRunDuration = time.Since(start).String()
	if err != nil {
		w.stats.LastError = err.Error()
		w.logger.WithError(err).Error("Task generation run failed")
		return
	}
	w.stats.LastError = ""
}
