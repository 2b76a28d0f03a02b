package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/skyline-residence/building-api/internal/api/metrics"
	"github.com/skyline-residence/building-api/internal/core/domain"
)

func queueDepth(t *testing.T, worker string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.AuditQueueDepth.WithLabelValues(worker).Write(&m))
	return m.GetGauge().GetValue()
}

type captureRepo struct {
	mu      sync.Mutex
	changes []domain.RoleChange
	err     error
	block   chan struct{}
}

func (r *captureRepo) InsertRoleChange(_ context.Context, c *domain.RoleChange) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, *c)
	return r.err
}

func (r *captureRepo) snapshot() []domain.RoleChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.RoleChange(nil), r.changes...)
}

func TestAuditDispatcher_PreservesPerEmailOrder(t *testing.T) {
	repo := &captureRepo{}
	d := NewAuditDispatcher(4, repo, zerolog.Nop())
	d.Start(context.Background())

	d.Record(domain.RoleChange{Email: "e@x.com", Role: domain.RoleMember, Reason: domain.RoleChangeAgreementApproved})
	d.Record(domain.RoleChange{Email: "other@x.com", Role: domain.RoleMember})
	d.Record(domain.RoleChange{Email: "e@x.com", Role: domain.RoleUser, Reason: domain.RoleChangeMemberRemoved})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	var forE []domain.Role
	for _, c := range repo.snapshot() {
		if c.Email == "e@x.com" {
			forE = append(forE, c.Role)
		}
	}
	require.Equal(t, []domain.Role{domain.RoleMember, domain.RoleUser}, forE)
	require.Len(t, repo.snapshot(), 3)
}

func TestAuditDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewAuditDispatcher(0, &captureRepo{}, zerolog.Nop())
	require.Len(t, d.workers, defaultWorkers)

	idx := d.shardIndex("e@x.com")
	for i := 0; i < 10; i++ {
		require.Equal(t, idx, d.shardIndex("e@x.com"))
	}
	require.GreaterOrEqual(t, idx, 0)
	require.Less(t, idx, defaultWorkers)
}

func TestAuditDispatcher_DropsWhenFull(t *testing.T) {
	repo := &captureRepo{block: make(chan struct{})}
	d := NewAuditDispatcher(1, repo, zerolog.Nop())
	d.Start(context.Background())

	// One record is held by the blocked worker; the rest fill the buffer.
	for i := 0; i < channelBuffer+10; i++ {
		d.Record(domain.RoleChange{Email: "e@x.com"})
	}
	close(repo.block)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))
	require.Less(t, len(repo.snapshot()), channelBuffer+10)
}

func TestAuditDispatcher_QueueDepthTracksQueuedRecords(t *testing.T) {
	repo := &captureRepo{block: make(chan struct{})}
	d := NewAuditDispatcher(1, repo, zerolog.Nop())
	base := queueDepth(t, "0")
	d.Start(context.Background())

	for i := 0; i < channelBuffer+10; i++ {
		d.Record(domain.RoleChange{Email: "e@x.com"})
	}

	// Dropped records are not counted; at most the one taken by the worker is gone.
	depth := queueDepth(t, "0") - base
	require.GreaterOrEqual(t, depth, float64(channelBuffer-1))
	require.LessOrEqual(t, depth, float64(channelBuffer))

	close(repo.block)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))
	require.Equal(t, base, queueDepth(t, "0"))
}

func TestAuditDispatcher_RecordAfterStopIsDropped(t *testing.T) {
	repo := &captureRepo{}
	d := NewAuditDispatcher(2, repo, zerolog.Nop())
	d.Start(context.Background())
	require.NoError(t, d.Stop(context.Background()))
	require.NoError(t, d.Stop(context.Background()), "stop is idempotent")

	require.NotPanics(t, func() { d.Record(domain.RoleChange{Email: "late@x.com"}) })
	require.Empty(t, repo.snapshot())
}

func TestAuditDispatcher_WriteErrorsDoNotStopWorker(t *testing.T) {
	repo := &captureRepo{err: errors.New("mongo down")}
	d := NewAuditDispatcher(1, repo, zerolog.Nop())
	d.Start(context.Background())

	d.Record(domain.RoleChange{Email: "a@x.com"})
	d.Record(domain.RoleChange{Email: "b@x.com"})
	require.NoError(t, d.Stop(context.Background()))
	require.Len(t, repo.snapshot(), 2)
}
