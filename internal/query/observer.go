package query

import (
	"context"
	"sync"
)

// Observer binds a single consumer to a query. It must be mounted before it
// fetches or publishes anything and should be unmounted when the consumer goes
// away.
type Observer struct {
	client *Client
	opts   Options
	entry  *entry

	mu         sync.Mutex
	ctx        context.Context
	mounted    bool
	listenerID int
	subs       map[int]func(State)
	nextSubID  int
}

// Observe returns an unmounted Observer for the query described by opts.
func (c *Client) Observe(opts Options) *Observer {
	return &Observer{
		client: c,
		opts:   opts,
		entry:  c.entryFor(opts.Key),
		subs:   map[int]func(State){},
	}
}

// Enabled returns whether the Observer may fetch.
func (o *Observer) Enabled() bool {
	return o.opts.Enabled
}

// Mount starts observing the query and, if the Observer is enabled and the
// cached data is stale, fetches it. Fetches started by Mount are bound to ctx.
func (o *Observer) Mount(ctx context.Context) {
	o.mu.Lock()
	if o.mounted {
		o.mu.Unlock()
		return
	}
	o.mounted = true
	o.ctx = ctx
	o.listenerID = o.client.subscribe(o.entry, o.publish)
	o.mu.Unlock()
	if o.opts.Enabled && o.client.isStale(o.entry, o.opts.StaleTime) {
		o.client.fetch(ctx, o.entry, o.opts.Fn)
	}
}

// Unmount stops observing the query. If no other Observer is watching, an
// in-flight fetch is abandoned.
func (o *Observer) Unmount() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.mounted {
		return
	}
	o.mounted = false
	o.client.unsubscribe(o.entry, o.listenerID)
}

// State returns the latest snapshot of the query.
func (o *Observer) State() State {
	return o.client.stateOf(o.entry)
}

// Subscribe registers fn to receive every new snapshot of the query. The
// returned function cancels the subscription.
func (o *Observer) Subscribe(fn func(State)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextSubID
	o.nextSubID++
	o.subs[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.subs, id)
	}
}

// Refetch fetches the query again regardless of staleness. It is a no-op for
// a disabled Observer.
func (o *Observer) Refetch() {
	if !o.opts.Enabled {
		return
	}
	o.mu.Lock()
	ctx := o.ctx
	o.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	o.client.fetch(ctx, o.entry, o.opts.Fn)
}

// Settled blocks until the query has no fetch in flight and returns its
// state. If ctx is done first, the current state is returned along with the
// context's error.
func (o *Observer) Settled(ctx context.Context) (State, error) {
	return o.client.wait(ctx, o.entry)
}

func (o *Observer) publish(state State) {
	o.mu.Lock()
	subs := make([]func(State), 0, len(o.subs))
	for _, sub := range o.subs {
		subs = append(subs, sub)
	}
	o.mu.Unlock()
	for _, sub := range subs {
		sub(state)
	}
}
