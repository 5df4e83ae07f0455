package workers

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/umtcnbyndr/eczane-crm/internal/services"
)

// DefaultSegmentUpdateInterval is used when no interval is configured.
const DefaultSegmentUpdateInterval = 12 * time.Hour

// SegmentUpdateWorker periodically rescores every customer's segment
// and churn risk.
type SegmentUpdateWorker struct {
	segmentation *services.SegmentationService
	interval     time.Duration
	logger       *logrus.Logger
	stopChan     chan struct{}
	doneChan     chan struct{}
	mu           sync.Mutex
	running      bool
	stats        SegmentUpdateStats
}

// SegmentUpdateStats tracks segment update run statistics.
type SegmentUpdateStats struct {
	Runs             int64     `json:"runs"`
	CustomersUpdated int64     `json:"customers_updated"`
	CustomersFailed  int64     `json:"customers_failed"`
	LastRunAt        time.Time `json:"last_run_at,omitempty"`
	LastRunDuration  string    `json:"last_run_duration,omitempty"`
	LastError        string    `json:"last_error,omitempty"`
}

// NewSegmentUpdateWorker creates a new segment update worker.
func NewSegmentUpdateWorker(segmentation *services.SegmentationService, interval time.Duration, logger *logrus.Logger) *SegmentUpdateWorker {
	if interval == 0 {
		interval = DefaultSegmentUpdateInterval
	}

	return &SegmentUpdateWorker{
		segmentation: segmentation,
		interval:     interval,
		logger:       logger,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start begins the update loop.
func (w *SegmentUpdateWorker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run()
	w.logger.WithField("interval", w.interval).Info("Segment update worker started")
}

// Stop stops the update loop and waits for it to drain.
func (w *SegmentUpdateWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	<-w.doneChan
	w.logger.Info("Segment update worker stopped")
}

// IsRunning returns whether the worker loop is active.
func (w *SegmentUpdateWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Stats returns a snapshot of the run statistics.
func (w *SegmentUpdateWorker) Stats() SegmentUpdateStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *SegmentUpdateWorker) run() {
	defer close(w.doneChan)

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

func (w *SegmentUpdateWorker) runOnce(ctx context.Context) {
	start := time.Now()
	updated, failed, err := w.segmentation.UpdateAllSegments(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.Runs++
	w.stats.CustomersUpdated += int64(updated)
	w.stats.CustomersFailed += int64(failed)
	w.stats.LastRunAt = start
	w.stats.LastRunDuration = time.Since(start).String()
	if err != nil {
		w.stats.LastError = err.Error()
		w.logger.WithError(err).Error("Segment update run failed")
		return
	}
	w.stats.LastError = ""
}
