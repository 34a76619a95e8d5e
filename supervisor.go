package moor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Supervisor is the single-writer reconnection loop: it drains the connect
// command channel and performs reconnect cycles, owning the current
// Connection and the registry iteration discipline. At most one supervisor
// task runs per logical connection.
type Supervisor struct {
	endpoints EndpointList
	policy    RecoveryPolicy
	transport Transport
	registry  *Registry
	queue     *connectQueue
	logger    *zap.Logger
	metrics   *Metrics

	mu   sync.Mutex
	conn *Connection

	cancel context.CancelFunc
	done   chan struct{}
}

// SupervisorOption configures a Supervisor at construction time.
type SupervisorOption func(*Supervisor)

// WithLogger overrides the supervisor's logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) SupervisorOption {
	return func(s *Supervisor) { s.logger = logger }
}

// WithMetrics attaches a Metrics instance the supervisor reports connect
// attempts, reconnects, and connection state to. Optional; nil by default.
func WithMetrics(metrics *Metrics) SupervisorOption {
	return func(s *Supervisor) { s.metrics = metrics }
}

// NewSupervisor builds a Supervisor driving reconnects for registry over
// endpoints, via transport, under policy.
func NewSupervisor(endpoints EndpointList, policy RecoveryPolicy, transport Transport, registry *Registry, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		endpoints: endpoints,
		policy:    policy,
		transport: transport,
		registry:  registry,
		queue:     newConnectQueue(),
		logger:    zap.NewNop(),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	registry.SetReconnectNotifier(s.RequestConnect)
	return s
}

// Run starts the supervisor loop, blocking until ctx is cancelled or Stop
// is called. It should be run in its own goroutine.
func (s *Supervisor) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer close(s.done)
	defer s.queue.Close()

	s.RequestConnect()

	for {
		cmd, ok := s.queue.Read(ctx)
		if !ok {
			return
		}
		s.runCycle(ctx, cmd)
	}
}

// Stop cancels the supervisor's context and blocks until its loop exits.
func (s *Supervisor) Stop() {
	// Closing the queue first also stops a Run that has not yet stored its
	// cancel func: its initial RequestConnect becomes a no-op and its first
	// Read returns ok=false.
	s.queue.Close()
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	<-s.done
}

// RequestConnect enqueues a fire-and-forget reconnect wake-up. Safe to call
// from any goroutine, including failure handlers on recoverables.
func (s *Supervisor) RequestConnect() {
	s.queue.Push(newConnectCommand())
}

// RequestConnectAndAwait enqueues a reconnect wake-up and blocks until the
// cycle servicing it completes.
func (s *Supervisor) RequestConnectAndAwait(ctx context.Context) error {
	cmd := newAwaitableConnectCommand()
	s.queue.Push(cmd)
	select {
	case err := <-cmd.Notify:
		return err
	case <-ctx.Done():
		return newError(KindCancelled, "connect request cancelled", ctx.Err())
	}
}

// currentConnection returns the connection most recently established, or
// nil before the first successful connect.
func (s *Supervisor) currentConnection() *Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// runCycle executes one reconnect cycle per the five-step contract. Fast
// path: when the connection is already open, most recoverables just need
// Resume() to handle the idempotence race where an earlier cycle already
// completed, but a recoverable that never attached to this connection
// (newly registered, or suspended by a link-only detach) needs a fresh
// RecoverAsync against the live connection first.
func (s *Supervisor) runCycle(ctx context.Context, cmd ConnectCommand) {
	ctx, span := startSpan(ctx, "moor.supervisor.reconnect")
	defer func() { span.End() }()

	if conn := s.currentConnection(); conn != nil && conn.IsOpened() {
		for _, r := range s.registry.Snapshot() {
			switch r.State() {
			case StateClosed:
				continue
			case StateAttached:
				r.Resume()
			default:
				if err := r.RecoverAsync(ctx, conn); err != nil {
					s.logger.Warn("recoverable failed to attach on already-open connection", zap.Error(err))
					continue
				}
				r.Resume()
			}
		}
		cmd.fulfill(nil)
		return
	}

	for _, r := range s.registry.Snapshot() {
		if r.State() != StateClosed {
			r.Suspend()
		}
	}

	for {
		conn, err := s.createConnection(ctx)
		if err != nil {
			cmd.fulfill(err)
			return
		}

		if recErr := s.recoverAll(ctx, conn); recErr != nil {
			s.logger.Warn("recoverable failed to re-attach, re-queuing reconnect", zap.Error(recErr))
			_ = conn.Close()
			continue
		}

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		s.metrics.setConnectionState(true)
		s.metrics.recordReconnect()

		snapshot := s.registry.Snapshot()
		s.metrics.setRecoverableCount(len(snapshot))
		for _, r := range snapshot {
			if r.State() != StateClosed {
				r.Resume()
			}
		}

		go s.watchClosed(conn)
		cmd.fulfill(nil)
		return
	}
}

// createConnection implements step 2 of the reconnect cycle: rotate
// through endpoints under the retry policy until transport.OpenConnection
// succeeds or ctx is cancelled.
func (s *Supervisor) createConnection(ctx context.Context) (*Connection, error) {
	seq := s.policy.NewSequence()
	retryCount, unbounded := s.policy.RetryCount()

	for attempt := 0; unbounded || attempt < retryCount; attempt++ {
		if ctx.Err() != nil {
			return nil, newError(KindCancelled, "connect aborted", ctx.Err())
		}

		endpoint := s.endpoints.At(attempt)
		s.metrics.recordConnectAttempt()
		transportConn, err := s.transport.OpenConnection(ctx, endpoint)
		if err == nil {
			return newConnection(transportConn), nil
		}
		s.metrics.recordConnectFailure()

		s.logger.Info("connect attempt failed, retrying",
			zap.Int("attempt", attempt), zap.String("endpoint", endpoint.String()), zap.Error(err))

		delay := seq.Next()
		if delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, newError(KindCancelled, "connect aborted during retry wait", ctx.Err())
		case <-timer.C:
		}
	}
	return nil, newError(KindConnectFailed, "retry count exhausted", nil)
}

// recoverAll implements step 3: await RecoverAsync on every recoverable.
// A single failure aborts the whole cycle, treated as a fresh
// connect-command by the caller's retry loop.
func (s *Supervisor) recoverAll(ctx context.Context, conn *Connection) error {
	for _, r := range s.registry.Snapshot() {
		if r.State() == StateClosed {
			continue
		}
		if err := r.RecoverAsync(ctx, conn); err != nil {
			return err
		}
	}
	return nil
}

// watchClosed implements step 5: subscribe to the connection's close event
// and enqueue a fresh reconnect when it fires.
func (s *Supervisor) watchClosed(conn *Connection) {
	select {
	case ev, ok := <-conn.Closed():
		if !ok {
			return
		}
		s.logger.Info("connection closed, requesting reconnect",
			zap.Bool("closed_by_peer", ev.ClosedByPeer))
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
		s.metrics.setConnectionState(false)
		s.RequestConnect()
	case <-s.done:
	}
}
