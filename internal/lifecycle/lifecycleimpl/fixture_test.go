package lifecycleimpl

import (
	"sync"
	"testing"
	"time"

	"github.com/sadaqat12/snapconnect/internal/media"
	mock_media "github.com/sadaqat12/snapconnect/internal/media/mocks"
	"github.com/sadaqat12/snapconnect/internal/metrics"
	"github.com/sadaqat12/snapconnect/internal/realtime"
	"github.com/sadaqat12/snapconnect/internal/realtime/realtimeimpl"
	"github.com/sadaqat12/snapconnect/internal/repositories/content"
	"github.com/sadaqat12/snapconnect/internal/repositories/scope"
	"github.com/sadaqat12/snapconnect/pkg/config"
	"github.com/sadaqat12/snapconnect/pkg/logger"
	"github.com/sadaqat12/snapconnect/pkg/retry"
	"go.uber.org/mock/gomock"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc     *Impl
	content *content.MemoryRepository
	scopes  *scope.MemoryRepository
	hub     *realtimeimpl.Hub
	media   *mock_media.MockStore
	metrics *metrics.Metrics
	clock   *fakeClock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Lifecycle.SnapTTL = 24 * time.Hour
	cfg.Lifecycle.StoryTTL = 24 * time.Hour
	cfg.Lifecycle.SweepInterval = time.Minute
	cfg.Lifecycle.SweepBatch = 2
	cfg.Lifecycle.SweepWorkers = 4
	cfg.Lifecycle.TombstoneRetention = 72 * time.Hour
	return cfg
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	items := content.NewMemoryRepository()
	scopes := scope.NewMemoryRepository().WithOwnership(items.OwnsScope)
	m := metrics.New()
	hub := realtimeimpl.NewHub(logger.NewNop(), m, 0)
	t.Cleanup(hub.Close)
	store := mock_media.NewMockStore(ctrl)

	svc := New(Opts{
		Content:  items,
		Scopes:   scopes,
		Media:    store,
		Notifier: hub,
		Metrics:  m,
		Logger:   logger.NewNop(),
		Config:   testConfig(),
	})
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = clock.Now
	svc.retry = retry.Config{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      1,
	}

	return &fixture{
		svc:     svc,
		content: items,
		scopes:  scopes,
		hub:     hub,
		media:   store,
		metrics: m,
		clock:   clock,
	}
}

var _ media.Store = (*mock_media.MockStore)(nil)

// recorder buffers the events of one scope.
type recorder struct {
	events chan realtime.Event
}

func (f *fixture) record(t *testing.T, scopeID string) *recorder {
	t.Helper()
	r := &recorder{events: make(chan realtime.Event, 64)}
	t.Cleanup(f.hub.Subscribe(scopeID, func(ev realtime.Event) { r.events <- ev }))
	return r
}

func (r *recorder) next(t *testing.T) realtime.Event {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return realtime.Event{}
	}
}

func (r *recorder) none(t *testing.T) {
	t.Helper()
	select {
	case ev := <-r.events:
		t.Fatalf("unexpected event %s for %s", ev.Kind, ev.ItemID)
	case <-time.After(30 * time.Millisecond):
	}
}
