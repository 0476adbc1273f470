package backup

import (
	"context"
	"sync"
	"time"

	"folio/app/logger"
	"folio/app/repositories"

	"golang.org/x/crypto/blake2b"
)

// finalFlushTimeout bounds the snapshot taken while shutting down.
const finalFlushTimeout = 10 * time.Second

// Worker periodically snapshots the store into its sinks. A snapshot
// identical to the last one written is skipped.
type Worker struct {
	store    repositories.PostStore
	sinks    []Sink
	interval time.Duration
	log      *logger.Logger

	mu      sync.Mutex
	lastSum [blake2b.Size256]byte
	written bool
}

func NewWorker(store repositories.PostStore, interval time.Duration, log *logger.Logger, sinks ...Sink) *Worker {
	return &Worker{
		store:    store,
		sinks:    sinks,
		interval: interval,
		log:      log,
	}
}

// RunOnce takes one snapshot and writes it to every sink. It reports
// whether anything was written.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := Snapshot(ctx, w.store)
	if err != nil {
		return false, err
	}
	sum := blake2b.Sum256(data)
	if w.written && sum == w.lastSum {
		return false, nil
	}

	var firstErr error
	for _, sink := range w.sinks {
		if err := sink.Write(ctx, data); err != nil {
			w.log.Error("Backup to %s failed: %v", sink.Name(), err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return false, firstErr
	}
	w.lastSum = sum
	w.written = true
	return true, nil
}

// Run snapshots every interval until ctx is canceled, then flushes once
// more. It returns immediately when the interval is zero or there are no
// sinks.
func (w *Worker) Run(ctx context.Context) {
	if w.interval <= 0 || len(w.sinks) == 0 {
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
			w.tick(flushCtx)
			cancel()
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	written, err := w.RunOnce(ctx)
	switch {
	case err != nil:
		w.log.Warn("Backup skipped: %v", err)
	case written:
		w.log.Info("Backup written to %d sink(s)", len(w.sinks))
	}
}
