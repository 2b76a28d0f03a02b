package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/skyline-residence/building-api/internal/api/metrics"
	"github.com/skyline-residence/building-api/internal/core/domain"
	"github.com/skyline-residence/building-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// AuditDispatcher persists role change records off the request path. Records
// are sharded by email so changes to one identity are written in order.
type AuditDispatcher struct {
	workers []chan domain.RoleChange
	repo    ports.AuditRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAuditDispatcher creates an AuditDispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.RoleChange, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.RoleChange, channelBuffer)
	}
	return d
}

var _ ports.RoleChangeRecorder = (*AuditDispatcher)(nil)

// Start launches all worker goroutines. Workers exit when their channel is
// closed by Stop or when ctx is cancelled.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record hands change to its worker without blocking. The record is dropped
// when the worker's channel is full or the dispatcher has been stopped.
func (d *AuditDispatcher) Record(change domain.RoleChange) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.AuditDroppedTotal.Inc()
		return
	}

	idx := d.shardIndex(shardKey(change))
	depth := metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx))
	// Counted before the send so the worker's Dec never lands first.
	depth.Inc()
	select {
	case d.workers[idx] <- change:
	default:
		depth.Dec()
		metrics.AuditDroppedTotal.Inc()
		d.log.Warn().
			Str("email", change.Email).
			Str("reason", change.Reason).
			Int("worker_id", idx).
			Msg("audit queue full, role change dropped")
	}
}

// Stop closes every worker channel and waits until pending records are
// written or ctx expires.
func (d *AuditDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardKey prefers the email and falls back to the user id.
func shardKey(change domain.RoleChange) string {
	if change.Email != "" {
		return change.Email
	}
	return change.UserID
}

// shardIndex maps a key deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.RoleChange) {
	defer d.wg.Done()
	depth := metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			d.write(id, change)
		}
	}
}

func (d *AuditDispatcher) write(id int, change domain.RoleChange) {
	// Detached so records drained during shutdown are still written.
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := d.repo.InsertRoleChange(ctx, &change); err != nil {
		d.log.Error().Err(err).
			Str("email", change.Email).
			Str("reason", change.Reason).
			Int("worker_id", id).
			Msg("role change audit write failed")
	}
}
