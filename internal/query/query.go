package query

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Status describes whether a query has produced data yet.
type Status int

const (
	// StatusPending indicates the query has neither data nor an error.
	StatusPending Status = iota
	// StatusSuccess indicates the most recent fetch produced data.
	StatusSuccess
	// StatusError indicates the most recent fetch failed.
	StatusError
)

// Key identifies a query within a Client. Two observers using equal Keys
// share cached state and in-flight fetches.
type Key []string

func (k Key) String() string {
	// Marshaling a []string cannot fail
	keyBytes, _ := json.Marshal([]string(k))
	return string(keyBytes)
}

// Func fetches a query's data.
type Func func(context.Context) (interface{}, error)

// Options configure an Observer.
type Options struct {
	Key Key
	Fn  Func
	// Enabled guards fetching. A disabled Observer never invokes Fn.
	Enabled bool
	// StaleTime is how long fetched data is considered fresh. Mounting an
	// Observer whose data is stale triggers a fetch. The zero value means data
	// is stale as soon as it arrives.
	StaleTime time.Duration
}

// State is an immutable snapshot of a query.
type State struct {
	// Data is the result of the most recent successful fetch. It is retained
	// when a later fetch fails.
	Data interface{}
	// Err is the error from the most recent fetch, if it failed.
	Err    error
	Status Status
	// IsLoading is true while the first fetch for a query with no data is in
	// flight.
	IsLoading bool
	// IsFetching is true while any fetch is in flight.
	IsFetching bool
	// UpdatedAt is when Data was last replaced.
	UpdatedAt time.Time
	// ErrUpdateCount is incremented every time a fetch fails. Two snapshots
	// with the same non-nil Err and the same count describe the same failure.
	ErrUpdateCount int
}

// Client caches query state by Key and coordinates fetches.
type Client struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

type entry struct {
	state          State
	listeners      map[int]func(State)
	nextListenerID int
	cancel         context.CancelFunc
	// done is non-nil while a fetch is in flight and is closed when it ends.
	done chan struct{}
	// generation is bumped whenever an in-flight fetch is abandoned so that
	// its eventual result can be discarded.
	generation int
}

// NewClient returns a Client with an empty cache.
func NewClient() *Client {
	return &Client{
		entries: map[string]*entry{},
		now:     time.Now,
	}
}

func (c *Client) entryFor(key Key) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key.String()
	e, ok := c.entries[k]
	if !ok {
		e = &entry{
			listeners: map[int]func(State){},
		}
		c.entries[k] = e
	}
	return e
}

func (c *Client) stateOf(e *entry) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return e.state
}

func (c *Client) isStale(e *entry, staleTime time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.state.UpdatedAt.IsZero() {
		return true
	}
	return c.now().Sub(e.state.UpdatedAt) >= staleTime
}

func (c *Client) subscribe(e *entry, fn func(State)) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := e.nextListenerID
	e.nextListenerID++
	e.listeners[id] = fn
	return id
}

// unsubscribe removes a listener. When the last listener goes away, any
// in-flight fetch is abandoned.
func (c *Client) unsubscribe(e *entry, id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(e.listeners, id)
	if len(e.listeners) > 0 || e.done == nil {
		return
	}
	e.cancel()
	e.cancel = nil
	e.generation++
	close(e.done)
	e.done = nil
	e.state.IsFetching = false
	e.state.IsLoading = false
}

// fetch starts fetching unless a fetch for the entry is already in flight.
func (c *Client) fetch(ctx context.Context, e *entry, fn Func) {
	c.mu.Lock()
	if e.done != nil {
		c.mu.Unlock()
		return
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})
	generation := e.generation
	e.state.IsFetching = true
	if e.state.UpdatedAt.IsZero() {
		e.state.Status = StatusPending
		e.state.Err = nil
		e.state.IsLoading = true
	}
	snapshot, listeners := e.state, e.listenersCopy()
	c.mu.Unlock()

	notify(listeners, snapshot)

	go func() {
		data, err := fn(fetchCtx)
		c.settle(e, generation, data, err)
	}()
}

func (c *Client) settle(
	e *entry,
	generation int,
	data interface{},
	err error,
) {
	c.mu.Lock()
	if generation != e.generation {
		// This fetch was abandoned
		c.mu.Unlock()
		return
	}
	if err != nil {
		e.state.Err = err
		e.state.ErrUpdateCount++
		e.state.Status = StatusError
	} else {
		e.state.Data = data
		e.state.Err = nil
		e.state.Status = StatusSuccess
		e.state.UpdatedAt = c.now()
	}
	e.state.IsFetching = false
	e.state.IsLoading = false
	e.cancel()
	e.cancel = nil
	done := e.done
	e.done = nil
	snapshot, listeners := e.state, e.listenersCopy()
	c.mu.Unlock()

	notify(listeners, snapshot)
	// Waiters are released only once listeners have seen the result
	close(done)
}

// wait blocks until no fetch is in flight for the entry or the context is
// done.
func (c *Client) wait(ctx context.Context, e *entry) (State, error) {
	for {
		c.mu.Lock()
		done, state := e.done, e.state
		c.mu.Unlock()
		if done == nil {
			return state, nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return c.stateOf(e), ctx.Err()
		}
	}
}

func (e *entry) listenersCopy() []func(State) {
	listeners := make([]func(State), 0, len(e.listeners))
	for _, listener := range e.listeners {
		listeners = append(listeners, listener)
	}
	return listeners
}

func notify(listeners []func(State), state State) {
	for _, listener := range listeners {
		listener(state)
	}
}
