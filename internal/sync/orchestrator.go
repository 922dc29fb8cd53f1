package sync

import (
	"context"
	"errors"
	"math/rand"
	gosync "sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/namatovu-christine/alumni-sync/internal/cache"
	"github.com/namatovu-christine/alumni-sync/internal/errs"
)

// Connectivity probes whether the hosted backend is reachable.
type Connectivity interface {
	Online(ctx context.Context) bool
}

// Battery reports the host power state. Hosts without a battery report
// not-low.
type Battery interface {
	Low(ctx context.Context) bool
}

// Trigger kinds for sync requests.
const (
	TriggerPeriodic  = "periodic"
	TriggerImmediate = "immediate"
)

type request struct {
	name     string
	dataType string // empty means full sync
	periodic bool
}

// Scheduling defaults.
const (
	DefaultInterval    = 2 * time.Hour
	DefaultFlex        = 30 * time.Minute
	DefaultBackoffBase = 2 * time.Second
	DefaultBackoffCap  = 5 * time.Minute
	DefaultMaxRetries  = 4
	DefaultConnPoll    = 30 * time.Second
)

// Orchestrator admits, dedups and schedules sync requests against the
// Executor. Periodic requests keep an already-queued request of the same
// name; immediate and forced requests replace it.
type Orchestrator struct {
	exec  *Executor
	state cache.SyncStateStore
	conn  Connectivity
	batt  Battery
	log   *zap.Logger

	interval    time.Duration
	flex        time.Duration
	backoffBase time.Duration
	backoffCap  time.Duration
	maxRetries  uint64
	connPoll    time.Duration

	mu      gosync.Mutex
	pending map[string]request
	order   []string
	paused  bool
	wake    chan struct{}
}

// OrchestratorOption tweaks scheduling parameters.
type OrchestratorOption func(*Orchestrator)

// WithInterval sets the periodic trigger interval and jitter flex.
func WithInterval(interval, flex time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.interval = interval
		o.flex = flex
	}
}

// WithBackoff sets the retry backoff base, cap and attempt limit.
func WithBackoff(base, cap time.Duration, maxRetries uint64) OrchestratorOption {
	return func(o *Orchestrator) {
		o.backoffBase = base
		o.backoffCap = cap
		o.maxRetries = maxRetries
	}
}

// WithConnPoll sets how often connectivity is probed for the
// offline-to-online immediate trigger.
func WithConnPoll(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.connPoll = d }
}

// NewOrchestrator wires an Orchestrator over the Executor.
func NewOrchestrator(exec *Executor, state cache.SyncStateStore, conn Connectivity,
	batt Battery, log *zap.Logger, opts ...OrchestratorOption) *Orchestrator {

	o := &Orchestrator{
		exec:        exec,
		state:       state,
		conn:        conn,
		batt:        batt,
		log:         log,
		interval:    DefaultInterval,
		flex:        DefaultFlex,
		backoffBase: DefaultBackoffBase,
		backoffCap:  DefaultBackoffCap,
		maxRetries:  DefaultMaxRetries,
		connPoll:    DefaultConnPoll,
		pending:     make(map[string]request),
		wake:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RequestImmediate queues a full sync, replacing any queued immediate
// request. Used after sign-in and when connectivity returns.
func (o *Orchestrator) RequestImmediate() {
	o.enqueue(request{name: TriggerImmediate}, true)
}

// RequestForce queues a sync for a single data type, replacing any queued
// request for that type.
func (o *Orchestrator) RequestForce(dataType string) {
	o.enqueue(request{name: "force_" + dataType, dataType: dataType}, true)
}

func (o *Orchestrator) requestPeriodic() {
	o.enqueue(request{name: TriggerPeriodic, periodic: true}, false)
}

func (o *Orchestrator) enqueue(req request, replace bool) {
	o.mu.Lock()
	if o.paused {
		o.mu.Unlock()
		return
	}
	if _, exists := o.pending[req.name]; exists {
		if !replace {
			o.mu.Unlock()
			return
		}
	} else {
		o.order = append(o.order, req.name)
	}
	o.pending[req.name] = req
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *Orchestrator) dequeue() (request, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.order) == 0 {
		return request{}, false
	}
	name := o.order[0]
	o.order = o.order[1:]
	req := o.pending[name]
	delete(o.pending, name)
	return req, true
}

// Stop pauses admission and clears the queue. In-flight passes finish.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paused = true
	o.pending = make(map[string]request)
	o.order = nil
}

// Resume re-enables admission.
func (o *Orchestrator) Resume() {
	o.mu.Lock()
	o.paused = false
	o.mu.Unlock()
	o.RequestImmediate()
}

// Run schedules periodic syncs and drains queued requests until ctx is
// cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	timer := time.NewTimer(o.nextDelay())
	defer timer.Stop()
	probe := time.NewTicker(o.connPoll)
	defer probe.Stop()

	online := o.conn.Online(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			o.requestPeriodic()
			timer.Reset(o.nextDelay())
		case <-probe.C:
			now := o.conn.Online(ctx)
			if now && !online {
				o.log.Info("connectivity restored, requesting sync")
				o.RequestImmediate()
			}
			online = now
		case <-o.wake:
			o.drain(ctx)
		}
	}
}

// nextDelay jitters the interval by ±flex so devices do not sync in step.
func (o *Orchestrator) nextDelay() time.Duration {
	if o.flex <= 0 {
		return o.interval
	}
	return o.interval - o.flex + time.Duration(rand.Int63n(int64(2*o.flex)))
}

func (o *Orchestrator) drain(ctx context.Context) {
	for {
		req, ok := o.dequeue()
		if !ok {
			return
		}
		o.process(ctx, req)
	}
}

func (o *Orchestrator) process(ctx context.Context, req request) {
	if !o.conn.Online(ctx) {
		o.log.Debug("sync skipped, offline", zap.String("request", req.name))
		return
	}
	if req.periodic && o.batt != nil && o.batt.Low(ctx) {
		o.log.Debug("sync skipped, battery low", zap.String("request", req.name))
		return
	}

	backoff := retry.WithMaxRetries(o.maxRetries,
		retry.WithCappedDuration(o.backoffCap, retry.NewExponential(o.backoffBase)))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := o.run(ctx, req)
		if err == nil {
			return nil
		}
		if errors.Is(err, errs.ErrUnauthorized) || errors.Is(err, errs.ErrNoSession) {
			return err
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		o.log.Error("sync request failed", zap.String("request", req.name), zap.Error(err))
		return
	}
	o.log.Info("sync request complete", zap.String("request", req.name))
}

func (o *Orchestrator) run(ctx context.Context, req request) error {
	if req.dataType != "" {
		return o.exec.SyncType(ctx, req.dataType)
	}
	return o.exec.SyncAll(ctx)
}

// Status is a point-in-time snapshot of the sync subsystem.
type Status struct {
	Online   bool             `json:"online"`
	Paused   bool             `json:"paused"`
	Pending  []string         `json:"pending"`
	LastSync map[string]int64 `json:"lastSync"`
}

// Status reports connectivity, queue state and the per-type watermarks.
func (o *Orchestrator) Status(ctx context.Context) (Status, error) {
	o.mu.Lock()
	st := Status{
		Paused:  o.paused,
		Pending: append([]string(nil), o.order...),
	}
	o.mu.Unlock()

	st.Online = o.conn.Online(ctx)
	st.LastSync = make(map[string]int64, 3)
	for _, key := range []string{KeyUsers, KeyJobs, KeyEvents} {
		ts, err := o.state.LastSync(ctx, key)
		if err != nil {
			return Status{}, err
		}
		st.LastSync[key] = ts
	}
	return st, nil
}
