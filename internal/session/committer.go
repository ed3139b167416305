package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrCommitterClosed is reported for requests dispatched after Close.
var ErrCommitterClosed = errors.New("session: committer closed")

// DefaultCommitTimeout bounds a single schedule commit.
const DefaultCommitTimeout = 10 * time.Second

// CommitWarning reports a schedule commit that did not persist. It never
// affects session progression.
type CommitWarning struct {
	Request CommitRequest
	Err     error
}

func (w CommitWarning) Error() string {
	return fmt.Sprintf("commit schedule for item %q: %v", w.Request.ItemID, w.Err)
}

func (w CommitWarning) Unwrap() error {
	return w.Err
}

// AsyncCommitter forwards commit requests to a ScheduleStore from a single
// background goroutine, in dispatch order. Dispatch never blocks on the store.
type AsyncCommitter struct {
	store     ScheduleStore
	logger    *zap.Logger
	onWarning func(CommitWarning)

	// Timeout bounds each commit. Set before the first Dispatch.
	Timeout time.Duration

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []CommitRequest
	busy     bool
	closed   bool
	warnings []CommitWarning
	done     chan struct{}
}

var _ Dispatcher = (*AsyncCommitter)(nil)

// NewAsyncCommitter starts the commit worker. logger and onWarning may be nil.
func NewAsyncCommitter(store ScheduleStore, logger *zap.Logger, onWarning func(CommitWarning)) *AsyncCommitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &AsyncCommitter{
		store:     store,
		logger:    logger,
		onWarning: onWarning,
		Timeout:   DefaultCommitTimeout,
		done:      make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	go c.run()
	return c
}

// Dispatch queues req and returns immediately.
func (c *AsyncCommitter) Dispatch(req CommitRequest) {
	c.mu.Lock()
	if c.closed {
		w := CommitWarning{Request: req, Err: ErrCommitterClosed}
		c.warnings = append(c.warnings, w)
		c.mu.Unlock()
		c.warn(w)
		return
	}
	c.queue = append(c.queue, req)
	c.cond.Broadcast()
	c.mu.Unlock()
}

// Flush waits until every dispatched request has been attempted, then
// returns and clears the warnings collected so far. If ctx ends first the
// warnings gathered up to then are returned with ctx's error.
func (c *AsyncCommitter) Flush(ctx context.Context) ([]CommitWarning, error) {
	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		c.cond.Broadcast()
		c.mu.Unlock()
	})
	defer stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.queue) > 0 || c.busy {
		if err := ctx.Err(); err != nil {
			return c.takeWarnings(), err
		}
		c.cond.Wait()
	}
	return c.takeWarnings(), nil
}

// Close drains the queue and stops the worker. Later dispatches are
// reported as warnings.
func (c *AsyncCommitter) Close() {
	c.mu.Lock()
	c.closed = true
	c.cond.Broadcast()
	c.mu.Unlock()
	<-c.done
}

func (c *AsyncCommitter) run() {
	defer close(c.done)
	for {
		c.mu.Lock()
		for len(c.queue) == 0 && !c.closed {
			c.cond.Wait()
		}
		if len(c.queue) == 0 {
			c.mu.Unlock()
			return
		}
		req := c.queue[0]
		c.queue[0] = CommitRequest{}
		c.queue = c.queue[1:]
		c.busy = true
		c.mu.Unlock()

		err := c.commit(req)
		var w CommitWarning
		if err != nil {
			w = CommitWarning{Request: req, Err: err}
			c.warn(w)
		}

		c.mu.Lock()
		if err != nil {
			c.warnings = append(c.warnings, w)
		}
		c.busy = false
		c.cond.Broadcast()
		c.mu.Unlock()
	}
}

func (c *AsyncCommitter) commit(req CommitRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in schedule store: %v", r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()
	return c.store.Commit(ctx, req)
}

func (c *AsyncCommitter) warn(w CommitWarning) {
	c.logger.Warn("schedule commit failed",
		zap.String("item_id", w.Request.ItemID),
		zap.String("learner_id", w.Request.LearnerID),
		zap.String("session_id", w.Request.SessionID),
		zap.Error(w.Err),
	)
	if c.onWarning != nil {
		c.onWarning(w)
	}
}

func (c *AsyncCommitter) takeWarnings() []CommitWarning {
	w := c.warnings
	c.warnings = nil
	return w
}
