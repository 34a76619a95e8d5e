package moor

import (
	"context"
	"sync"
)

// ConnectCommand is a single-shot "please (re)connect now" signal. Notify is
// nil for fire-and-forget wake-ups raised by failure handlers; when set, the
// supervisor closes it once the reconnect cycle that serviced this command
// finishes (successfully or by shutdown).
type ConnectCommand struct {
	Notify chan error
}

// newConnectCommand builds a fire-and-forget command.
func newConnectCommand() ConnectCommand {
	return ConnectCommand{}
}

// newAwaitableConnectCommand builds a command whose submitter can block on
// Notify until the reconnect cycle that services it completes.
func newAwaitableConnectCommand() ConnectCommand {
	return ConnectCommand{Notify: make(chan error, 1)}
}

func (c ConnectCommand) fulfill(err error) {
	if c.Notify == nil {
		return
	}
	c.Notify <- err
	close(c.Notify)
}

// connectQueue is the multi-producer, single-consumer unbounded queue of
// ConnectCommand values the supervisor drains. Writes never block. Reads are
// async and cancellable via the context passed to Read. Closing a
// connectQueue after which further Push calls are no-ops, matching the
// "writes always succeed unless the channel is closed" contract.
type connectQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []ConnectCommand
	closed bool
}

func newConnectQueue() *connectQueue {
	q := &connectQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues a command. It is a no-op once the queue is closed.
func (q *connectQueue) Push(cmd ConnectCommand) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, cmd)
	q.cond.Signal()
}

// Read blocks until a command is available, the queue is closed, or ctx is
// done. Closing the queue wakes every blocked reader with ok=false.
func (q *connectQueue) Read(ctx context.Context) (ConnectCommand, bool) {
	done := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		close(done)
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if len(q.items) > 0 {
			cmd := q.items[0]
			q.items = q.items[1:]
			return cmd, true
		}
		if q.closed {
			return ConnectCommand{}, false
		}
		select {
		case <-done:
			return ConnectCommand{}, false
		default:
		}
		q.cond.Wait()
	}
}

// Close marks the queue closed; blocked and future Read calls return
// ok=false, and Push becomes a no-op.
func (q *connectQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}
