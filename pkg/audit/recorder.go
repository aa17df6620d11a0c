package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"railguard-io/railguard/pkg/guardrails"
)

// RecorderConfig configures the async violation recorder.
type RecorderConfig struct {
	// Enabled gates recording entirely.
	Enabled bool

	// Buffer is the async write channel size. Default: 1000.
	Buffer int

	// WriteTimeout bounds each storage write. Default: 5s.
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		Enabled:      true,
		Buffer:       1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder writes violation records to storage asynchronously so scan
// call sites never block on persistence. When the buffer is full,
// records are dropped and counted rather than applying backpressure to
// the request path.
type Recorder struct {
	storage Storage
	config  *RecorderConfig
	logger  *slog.Logger

	recordCh chan *Record
	done     chan struct{}
	wg       sync.WaitGroup

	mu      sync.Mutex
	dropped int64
	closed  bool
}

// NewRecorder creates a recorder and starts its background worker.
func NewRecorder(storage Storage, config *RecorderConfig) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if config.Buffer <= 0 {
		config.Buffer = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		storage:  storage,
		config:   config,
		logger:   slog.Default().With("component", "audit.recorder"),
		recordCh: make(chan *Record, config.Buffer),
		done:     make(chan struct{}),
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// RecordScan enqueues every violation of a scan result for persistence.
// It returns immediately; storage writes happen on the worker.
func (r *Recorder) RecordScan(surface string, generation uint64, result *guardrails.ScanResult) {
	if !r.config.Enabled {
		return
	}

	for _, record := range NewRecords(surface, generation, result) {
		select {
		case r.recordCh <- record:
		default:
			r.mu.Lock()
			r.dropped++
			dropped := r.dropped
			r.mu.Unlock()
			r.logger.Warn("audit buffer full, dropping record",
				"rule", record.Rule,
				"dropped_total", dropped,
			)
		}
	}
}

// Dropped returns how many records were discarded due to a full buffer.
func (r *Recorder) Dropped() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Close stops the worker after draining buffered records.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	close(r.done)
	r.wg.Wait()
	return nil
}

// worker drains the record channel into storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordCh:
			r.write(record)
		case <-r.done:
			for {
				select {
				case record := <-r.recordCh:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

// write persists one record with the configured timeout.
func (r *Recorder) write(record *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store audit record",
			"record_id", record.ID,
			"rule", record.Rule,
			"error", err,
		)
	}
}
