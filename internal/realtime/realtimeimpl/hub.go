package realtimeimpl

import (
	"context"
	"sync"
	"time"

	"github.com/sadaqat12/snapconnect/internal/metrics"
	"github.com/sadaqat12/snapconnect/internal/realtime"
	"github.com/sadaqat12/snapconnect/pkg/logger"
	"go.uber.org/fx"
)

const defaultQueueSize = 256

type Opts struct {
	fx.In

	LC      fx.Lifecycle
	Logger  logger.Logger
	Metrics *metrics.Metrics
}

// Hub fans events out to the subscribers of each scope. Every subscriber owns
// a buffered queue drained by one goroutine, so a handler only ever sees its
// scope's events in publish order. A subscriber whose queue is full is
// dropped instead of stalling publishers.
type Hub struct {
	mu        sync.Mutex
	rooms     map[string]*room
	nextID    uint64
	queueSize int
	closed    bool

	logger  logger.Logger
	metrics *metrics.Metrics
}

type room struct {
	subscribers map[uint64]*subscriber
}

type subscriber struct {
	id      uint64
	scopeID string
	queue   chan realtime.Event
	handler realtime.Handler
	done    chan struct{}
	// dropped is set before queue is closed when the hub cut the
	// subscriber off.
	dropped bool
}

func New(opts Opts) *Hub {
	h := NewHub(opts.Logger, opts.Metrics, defaultQueueSize)
	opts.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			h.Close()
			return nil
		},
	})
	return h
}

func NewHub(log logger.Logger, m *metrics.Metrics, queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Hub{
		rooms:     make(map[string]*room),
		queueSize: queueSize,
		logger:    log.WithComponent("RealtimeHub"),
		metrics:   m,
	}
}

var _ realtime.Notifier = (*Hub)(nil)

func (h *Hub) Publish(_ context.Context, scopeID string, event realtime.Event) error {
	event.ScopeID = scopeID

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.EventsPublished.WithLabelValues(string(event.Kind)).Inc()
	}

	r, ok := h.rooms[scopeID]
	if !ok {
		return nil
	}
	for _, sub := range r.subscribers {
		select {
		case sub.queue <- event:
		default:
			h.logger.Warn("Dropping slow subscriber", "scope_id", scopeID, "subscriber", sub.id)
			h.removeLocked(sub, true)
			if h.metrics != nil {
				h.metrics.SubscribersDropped.Inc()
			}
		}
	}
	return nil
}

func (h *Hub) Subscribe(scopeID string, handler realtime.Handler) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return func() {}
	}

	h.nextID++
	sub := &subscriber{
		id:      h.nextID,
		scopeID: scopeID,
		queue:   make(chan realtime.Event, h.queueSize),
		handler: handler,
		done:    make(chan struct{}),
	}

	r, ok := h.rooms[scopeID]
	if !ok {
		r = &room{subscribers: make(map[uint64]*subscriber)}
		h.rooms[scopeID] = r
	}
	r.subscribers[sub.id] = sub

	go sub.run()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			h.removeLocked(sub, false)
			h.mu.Unlock()
			<-sub.done
		})
	}
}

// Subscribers returns the number of live subscribers of scopeID.
func (h *Hub) Subscribers(scopeID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if r, ok := h.rooms[scopeID]; ok {
		return len(r.subscribers)
	}
	return 0
}

// Close drops every subscriber. Later subscriptions are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var subs []*subscriber
	for _, r := range h.rooms {
		for _, sub := range r.subscribers {
			subs = append(subs, sub)
		}
	}
	for _, sub := range subs {
		h.removeLocked(sub, false)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		<-sub.done
	}
}

func (h *Hub) removeLocked(sub *subscriber, dropped bool) {
	r, ok := h.rooms[sub.scopeID]
	if !ok {
		return
	}
	if _, ok := r.subscribers[sub.id]; !ok {
		return
	}
	delete(r.subscribers, sub.id)
	sub.dropped = dropped
	close(sub.queue)
	if len(r.subscribers) == 0 {
		delete(h.rooms, sub.scopeID)
	}
}

func (s *subscriber) run() {
	defer close(s.done)
	for event := range s.queue {
		s.handler(event)
	}
	if s.dropped {
		s.handler(realtime.Dropped(s.scopeID, time.Now()))
	}
}
