// Package sink forwards classified error records to external diagnostics
// stores without blocking the engine.
package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/faultline/internal/core/domain"
	"github.com/vietddude/faultline/internal/infra/storage"
	"github.com/vietddude/faultline/internal/observability/metrics"
)

// Writer receives forwarded records.
type Writer interface {
	Name() string
	Write(ctx context.Context, rec domain.ErrorRecord) error
}

// ArchiveWriter adapts an ErrorArchive to a Writer.
type ArchiveWriter struct {
	Archive storage.ErrorArchive
	Label   string
}

func (w ArchiveWriter) Name() string {
	if w.Label == "" {
		return "archive"
	}
	return w.Label
}

func (w ArchiveWriter) Write(ctx context.Context, rec domain.ErrorRecord) error {
	return w.Archive.Save(ctx, rec)
}

// Forwarder buffers records and writes them to every Writer from a single
// goroutine. When the buffer is full new records are dropped.
type Forwarder struct {
	writers      []Writer
	queue        chan domain.ErrorRecord
	writeTimeout time.Duration
	log          *slog.Logger

	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	started bool
}

// NewForwarder creates a forwarder with the given buffer size.
func NewForwarder(bufferSize int, writers ...Writer) *Forwarder {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Forwarder{
		writers:      writers,
		queue:        make(chan domain.ErrorRecord, bufferSize),
		writeTimeout: 5 * time.Second,
		log:          slog.Default().With("component", "sink"),
		done:         make(chan struct{}),
	}
}

// Handle enqueues rec. It never blocks and is safe to register as a global
// error handler.
func (f *Forwarder) Handle(rec domain.ErrorRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		metrics.SinkDropped.WithLabelValues("forwarder", "closed").Inc()
		return
	}
	select {
	case f.queue <- rec:
	default:
		metrics.SinkDropped.WithLabelValues("forwarder", "buffer_full").Inc()
		f.log.Warn("Sink buffer full, dropping record", "id", rec.ID)
	}
}

// Start drains the queue on a background goroutine until ctx is cancelled
// or Close is called. Pending records are flushed before it exits.
func (f *Forwarder) Start(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return
	}
	f.started = true
	go f.run(ctx)
}

func (f *Forwarder) run(ctx context.Context) {
	defer close(f.done)

	for {
		select {
		case <-ctx.Done():
			f.drain(context.Background())
			return
		case rec, ok := <-f.queue:
			if !ok {
				return
			}
			f.write(ctx, rec)
		}
	}
}

// Close stops accepting records and waits for the queue to flush.
func (f *Forwarder) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	close(f.queue)
	started := f.started
	f.mu.Unlock()

	if started {
		<-f.done
	}
}

func (f *Forwarder) drain(ctx context.Context) {
	for {
		select {
		case rec, ok := <-f.queue:
			if !ok {
				return
			}
			f.write(ctx, rec)
		default:
			return
		}
	}
}

func (f *Forwarder) write(ctx context.Context, rec domain.ErrorRecord) {
	for _, w := range f.writers {
		wctx, cancel := context.WithTimeout(ctx, f.writeTimeout)
		err := w.Write(wctx, rec)
		cancel()
		if err != nil {
			metrics.SinkDropped.WithLabelValues(w.Name(), "write_failed").Inc()
			f.log.Error("Sink write failed", "sink", w.Name(), "id", rec.ID, "error", err)
		}
	}
}
