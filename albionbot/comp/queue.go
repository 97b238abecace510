package comp

import (
	"log/slog"
	"sync"
)

// Operation is a queued unit of work for one comp. It performs its own
// user-visible reporting before returning; the queue never propagates a
// result to the caller.
type Operation func()

// Queue serializes state-mutating operations per comp id. Operations
// enqueued for the same id run one at a time in arrival order, each to
// completion including its remote side effects; operations for different
// ids run concurrently. A per-id chain is created on first use and removed
// again once it drains, so idle comps cost no memory.
type Queue struct {
	mu     sync.Mutex
	chains map[string]*chain
}

type chain struct {
	ops []Operation
}

func NewQueue() *Queue {
	return &Queue{chains: make(map[string]*chain)}
}

// Enqueue appends op to the chain for compID, starting a worker for the
// chain if none is running. Fire-and-forget: chain integrity does not
// depend on op's outcome.
func (q *Queue) Enqueue(compID string, op Operation) {
	q.mu.Lock()
	c, running := q.chains[compID]
	if !running {
		c = &chain{}
		q.chains[compID] = c
	}
	c.ops = append(c.ops, op)
	q.mu.Unlock()

	if !running {
		go q.drain(compID, c)
	}
}

func (q *Queue) drain(compID string, c *chain) {
	for {
		q.mu.Lock()
		if len(c.ops) == 0 {
			delete(q.chains, compID)
			q.mu.Unlock()
			return
		}
		op := c.ops[0]
		c.ops = c.ops[1:]
		q.mu.Unlock()

		runIsolated(compID, op)
	}
}

// runIsolated keeps a failing operation from breaking the chain for the
// operations queued behind it.
func runIsolated(compID string, op Operation) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Comp operation panicked",
				slog.String("type", "comp"),
				slog.String("comp_id", compID),
				slog.Any("panic", r))
		}
	}()
	op()
}

// active reports the number of live chains, for tests.
func (q *Queue) active() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.chains)
}
