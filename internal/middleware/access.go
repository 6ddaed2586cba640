package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mtlprog/pageserve/internal/domain"
)

const (
	// recordTimeout bounds a single hit insert.
	recordTimeout = 2 * time.Second

	// DefaultQueueSize is the number of hits buffered for the store before
	// new hits are dropped.
	DefaultQueueSize = 256
)

// HitRecorder persists served requests.
type HitRecorder interface {
	Record(ctx context.Context, hit domain.Hit) error
}

// AccessLog logs every request and optionally records it as a hit.
// Hits are handed to a single writer goroutine through a bounded queue;
// when the queue is full the hit is dropped rather than delaying the response.
type AccessLog struct {
	recorder HitRecorder
	queue    chan domain.Hit
	done     chan struct{}
	dropped  atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// NewAccessLog creates a new AccessLog. A nil recorder disables hit recording.
// queueSize values below 1 are treated as 1.
func NewAccessLog(recorder HitRecorder, queueSize int) *AccessLog {
	m := &AccessLog{recorder: recorder}
	if recorder == nil {
		return m
	}

	if queueSize < 1 {
		queueSize = 1
	}
	m.queue = make(chan domain.Hit, queueSize)
	m.done = make(chan struct{})
	go m.writeHits()

	return m
}

// Wrap logs the outcome of every request handled by next.
func (m *AccessLog) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		hit := domain.Hit{
			Method:     r.Method,
			Path:       r.URL.Path,
			Status:     rw.status,
			Bytes:      rw.bytes,
			DurationMs: time.Since(start).Milliseconds(),
			RemoteAddr: r.RemoteAddr,
			ServedAt:   start.UTC(),
		}

		slog.Info("request served",
			"method", hit.Method,
			"path", hit.Path,
			"status", hit.Status,
			"bytes", hit.Bytes,
			"duration_ms", hit.DurationMs,
			"remote_addr", hit.RemoteAddr,
		)

		m.enqueue(hit)
	})
}

// enqueue hands hit to the writer without blocking.
func (m *AccessLog) enqueue(hit domain.Hit) {
	if m.queue == nil {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}

	select {
	case m.queue <- hit:
	default:
		dropped := m.dropped.Add(1)
		slog.Warn("hit queue full, dropping hit", "path", hit.Path, "dropped_total", dropped)
	}
}

// writeHits persists queued hits until the queue is closed.
func (m *AccessLog) writeHits() {
	defer close(m.done)

	for hit := range m.queue {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := m.recorder.Record(ctx, hit); err != nil {
			slog.Warn("failed to record hit", "path", hit.Path, "error", err)
		}
		cancel()
	}
}

// Dropped returns how many hits were discarded because the queue was full.
func (m *AccessLog) Dropped() int64 {
	return m.dropped.Load()
}

// Close stops accepting hits and waits for queued ones to be written.
// Safe to call multiple times.
func (m *AccessLog) Close() {
	if m.queue == nil {
		return
	}

	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.queue)
	}
	m.mu.Unlock()

	<-m.done
}

// responseWriter captures the status code and body size written by a handler.
type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(status int) {
	if !rw.wroteHeader {
		rw.status = status
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
