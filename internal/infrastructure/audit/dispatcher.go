// Package audit provides the best-effort access-log writer. Entries are
// recorded at explicit decision points and persisted asynchronously so an
// audit write can never block or fail the request that produced it.
package audit

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
	"github.com/regionalitapevi/admin-portal/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes access log entries to a fixed set of workers sharded by
// user id, keeping per-user entry ordering. Record never blocks: when a
// worker channel is full the entry is dropped and the drop is logged.
type Dispatcher struct {
	workers []chan domain.AccessLog
	repo    ports.AccessLogRepository
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AccessLogRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AccessLog, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AccessLog, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues an entry for persistence. The request context is not
// retained; workers write with their own context so an aborted request does
// not cancel its audit entry.
func (d *Dispatcher) Record(_ context.Context, entry domain.AccessLog) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	select {
	case d.workers[d.shardIndex(entry)] <- entry:
	default:
		d.log.Warn().
			Str("action", entry.Action).
			Str("module", entry.Module).
			Msg("audit queue full, entry dropped")
	}
}

// shardIndex maps an entry deterministically to a worker index. Anonymous
// entries (nil user) all land on worker 0.
func (d *Dispatcher) shardIndex(entry domain.AccessLog) int {
	if entry.UserID == nil {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(*entry.UserID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AccessLog) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			if err := d.repo.Append(ctx, &entry); err != nil {
				d.log.Error().Err(err).
					Str("action", entry.Action).
					Int("worker_id", id).
					Msg("access log append failed")
			}
		}
	}
}
