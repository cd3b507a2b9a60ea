package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
	"github.com/riskibarqy/tournament-api/internal/domain/realtime"
	"github.com/riskibarqy/tournament-api/internal/platform/logging"
)

const (
	opSyncEvent    = "sync_event"
	opRemoveEvent  = "remove_event"
	opNotification = "notification"
	opRemoveMatch  = "remove_match"

	defaultWorkers = 8
	defaultTimeout = 5 * time.Second
	defaultBacklog = 256
)

// Sink is one secondary real-time store.
type Sink interface {
	Name() string
	SyncMatchEvent(ctx context.Context, event matchevent.Enriched) error
	RemoveMatchEvent(ctx context.Context, matchID, eventID int64) error
	SendMatchNotification(ctx context.Context, matchID int64, notification realtime.Notification) error
	RemoveAllMatchData(ctx context.Context, matchID int64) error
}

// DeliveryObserver receives one call per delivery attempt.
type DeliveryObserver interface {
	ObserveRealtimeDelivery(sink, operation, outcome string, elapsed time.Duration)
}

type DispatcherConfig struct {
	Workers int
	Timeout time.Duration
	// Backlog caps the deliveries queued behind a busy match on one sink.
	Backlog int
}

// Dispatcher fans notifier calls out to sinks on a bounded worker pool.
// Deliveries for one match reach each sink in call order: every (sink, match)
// pair is a lane drained by at most one worker. A lane that cannot get a
// worker, or whose backlog is full, drops the delivery and logs it.
type Dispatcher struct {
	pool     *ants.Pool
	sinks    []Sink
	timeout  time.Duration
	backlog  int
	observer DeliveryObserver
	logger   *logging.Logger
	now      func() time.Time

	mu    sync.Mutex
	lanes map[laneKey]*lane
}

type laneKey struct {
	sink    int
	matchID int64
}

type lane struct {
	queue []delivery
}

type delivery struct {
	ctx       context.Context
	operation string
	matchID   int64
	call      func(context.Context, Sink) error
}

var _ realtime.Notifier = (*Dispatcher)(nil)

func NewDispatcher(cfg DispatcherConfig, sinks []Sink, observer DeliveryObserver, logger *logging.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	backlog := cfg.Backlog
	if backlog <= 0 {
		backlog = defaultBacklog
	}

	pool, err := ants.NewPool(workers, ants.WithNonblocking(true), ants.WithPanicHandler(func(p any) {
		logger.Error("realtime delivery panicked", "panic", fmt.Sprint(p))
	}))
	if err != nil {
		return nil, fmt.Errorf("create realtime worker pool: %w", err)
	}

	return &Dispatcher{
		pool:     pool,
		sinks:    append([]Sink(nil), sinks...),
		timeout:  timeout,
		backlog:  backlog,
		observer: observer,
		logger:   logger,
		now:      time.Now,
		lanes:    make(map[laneKey]*lane),
	}, nil
}

func (d *Dispatcher) MatchEventSynced(ctx context.Context, event matchevent.Enriched) {
	d.dispatch(ctx, opSyncEvent, event.MatchID, func(ctx context.Context, s Sink) error {
		return s.SyncMatchEvent(ctx, event)
	})
}

func (d *Dispatcher) MatchEventRemoved(ctx context.Context, matchID, eventID int64) {
	d.dispatch(ctx, opRemoveEvent, matchID, func(ctx context.Context, s Sink) error {
		return s.RemoveMatchEvent(ctx, matchID, eventID)
	})
}

func (d *Dispatcher) MatchNotification(ctx context.Context, matchID int64, notification realtime.Notification) {
	d.dispatch(ctx, opNotification, matchID, func(ctx context.Context, s Sink) error {
		return s.SendMatchNotification(ctx, matchID, notification)
	})
}

func (d *Dispatcher) MatchDataRemoved(ctx context.Context, matchID int64) {
	d.dispatch(ctx, opRemoveMatch, matchID, func(ctx context.Context, s Sink) error {
		return s.RemoveAllMatchData(ctx, matchID)
	})
}

// Running reports busy workers.
func (d *Dispatcher) Running() int {
	return d.pool.Running()
}

// Close waits up to timeout for queued deliveries, then stops the pool.
func (d *Dispatcher) Close(timeout time.Duration) error {
	if err := d.pool.ReleaseTimeout(timeout); err != nil {
		return fmt.Errorf("release realtime worker pool: %w", err)
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, operation string, matchID int64, call func(context.Context, Sink) error) {
	// Deliveries outlive the request that triggered them.
	item := delivery{
		ctx:       context.WithoutCancel(ctx),
		operation: operation,
		matchID:   matchID,
		call:      call,
	}
	for i := range d.sinks {
		d.enqueue(laneKey{sink: i, matchID: matchID}, item)
	}
}

func (d *Dispatcher) enqueue(key laneKey, item delivery) {
	d.mu.Lock()
	if l, ok := d.lanes[key]; ok {
		if len(l.queue) >= d.backlog {
			d.mu.Unlock()
			d.drop(key, item, "lane backlog full")
			return
		}
		l.queue = append(l.queue, item)
		d.mu.Unlock()
		return
	}
	d.lanes[key] = &lane{queue: []delivery{item}}
	d.mu.Unlock()

	err := d.pool.Submit(func() { d.drain(key) })
	if err == nil {
		return
	}

	reason := "submit failed"
	if errors.Is(err, ants.ErrPoolOverload) {
		reason = "worker pool saturated"
	} else if errors.Is(err, ants.ErrPoolClosed) {
		reason = "dispatcher closed"
	}
	d.mu.Lock()
	dropped := d.lanes[key].queue
	delete(d.lanes, key)
	d.mu.Unlock()
	for _, item := range dropped {
		d.drop(key, item, reason)
	}
}

// drain delivers the lane's queue in order and retires the lane once empty.
func (d *Dispatcher) drain(key laneKey) {
	sink := d.sinks[key.sink]
	for {
		d.mu.Lock()
		l := d.lanes[key]
		if len(l.queue) == 0 {
			delete(d.lanes, key)
			d.mu.Unlock()
			return
		}
		item := l.queue[0]
		l.queue[0] = delivery{}
		l.queue = l.queue[1:]
		d.mu.Unlock()

		d.deliver(sink, item)
	}
}

func (d *Dispatcher) deliver(sink Sink, item delivery) {
	deliveryCtx, cancel := context.WithTimeout(item.ctx, d.timeout)
	defer cancel()
	defer func() {
		if p := recover(); p != nil {
			d.observe(sink.Name(), item.operation, "error", 0)
			d.logger.ErrorContext(deliveryCtx, "realtime delivery panicked",
				"sink", sink.Name(),
				"operation", item.operation,
				"match_id", item.matchID,
				"panic", fmt.Sprint(p),
			)
		}
	}()

	start := d.now()
	err := item.call(deliveryCtx, sink)
	elapsed := d.now().Sub(start)
	if err != nil {
		d.observe(sink.Name(), item.operation, "error", elapsed)
		d.logger.WarnContext(deliveryCtx, "realtime delivery failed",
			"sink", sink.Name(),
			"operation", item.operation,
			"match_id", item.matchID,
			"error", err,
		)
		return
	}
	d.observe(sink.Name(), item.operation, "ok", elapsed)
}

func (d *Dispatcher) drop(key laneKey, item delivery, reason string) {
	name := d.sinks[key.sink].Name()
	d.observe(name, item.operation, "dropped", 0)
	d.logger.WarnContext(item.ctx, "realtime delivery dropped",
		"sink", name,
		"operation", item.operation,
		"match_id", item.matchID,
		"reason", reason,
	)
}

func (d *Dispatcher) observe(sink, operation, outcome string, elapsed time.Duration) {
	if d.observer != nil {
		d.observer.ObserveRealtimeDelivery(sink, operation, outcome, elapsed)
	}
}
