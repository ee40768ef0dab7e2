package query

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// fakeFetcher is a Func whose calls block until released by the test.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	results chan result
}

type result struct {
	data interface{}
	err  error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		results: make(chan result, 10),
	}
}

func (f *fakeFetcher) fetch(ctx context.Context) (interface{}, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	select {
	case r := <-f.results:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func settle(t *testing.T, o *Observer) State {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	state, err := o.Settled(ctx)
	require.NoError(t, err)
	return state
}

func TestKeyString(t *testing.T) {
	require.Equal(t, `["all-tasks","w1"]`, Key{"all-tasks", "w1"}.String())
	require.NotEqual(
		t,
		Key{"a", "b"}.String(),
		Key{"a,b"}.String(),
	)
}

func TestDisabledObserverNeverFetches(t *testing.T) {
	fetcher := newFakeFetcher()
	o := NewClient().Observe(
		Options{
			Key:     Key{"workspace", ""},
			Fn:      fetcher.fetch,
			Enabled: false,
		},
	)
	o.Mount(context.Background())
	defer o.Unmount()
	o.Refetch()
	state := o.State()
	require.Equal(t, StatusPending, state.Status)
	require.False(t, state.IsLoading)
	require.False(t, state.IsFetching)
	require.Equal(t, 0, fetcher.callCount())
	require.False(t, o.Enabled())
}

func TestObserverLifecycle(t *testing.T) {
	fetcher := newFakeFetcher()
	o := NewClient().Observe(
		Options{
			Key:     Key{"auth-user"},
			Fn:      fetcher.fetch,
			Enabled: true,
		},
	)
	var mu sync.Mutex
	var published []State
	o.Subscribe(func(state State) {
		mu.Lock()
		defer mu.Unlock()
		published = append(published, state)
	})
	o.Mount(context.Background())
	defer o.Unmount()

	state := o.State()
	require.True(t, state.IsLoading)
	require.True(t, state.IsFetching)

	fetcher.results <- result{data: "ana"}
	state = settle(t, o)
	require.Equal(t, StatusSuccess, state.Status)
	require.Equal(t, "ana", state.Data)
	require.False(t, state.IsLoading)
	require.False(t, state.IsFetching)
	require.False(t, state.UpdatedAt.IsZero())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, published, 2)
	require.True(t, published[0].IsLoading)
	require.Equal(t, "ana", published[1].Data)
}

func TestRefetchRetainsDataOnError(t *testing.T) {
	fetcher := newFakeFetcher()
	o := NewClient().Observe(
		Options{
			Key:     Key{"auth-user"},
			Fn:      fetcher.fetch,
			Enabled: true,
		},
	)
	o.Mount(context.Background())
	defer o.Unmount()
	fetcher.results <- result{data: "ana"}
	settle(t, o)

	o.Refetch()
	state := o.State()
	require.True(t, state.IsFetching)
	require.False(t, state.IsLoading)

	testErr := errors.New("boom")
	fetcher.results <- result{err: testErr}
	state = settle(t, o)
	require.Equal(t, StatusError, state.Status)
	require.Equal(t, testErr, state.Err)
	require.Equal(t, "ana", state.Data)
	require.Equal(t, 1, state.ErrUpdateCount)
	require.Equal(t, 2, fetcher.callCount())
}

func TestRefetchWithoutDataClearsPreviousError(t *testing.T) {
	fetcher := newFakeFetcher()
	o := NewClient().Observe(
		Options{
			Key:     Key{"workspace", "w1"},
			Fn:      fetcher.fetch,
			Enabled: true,
		},
	)
	o.Mount(context.Background())
	defer o.Unmount()
	fetcher.results <- result{err: errors.New("first")}
	state := settle(t, o)
	require.Error(t, state.Err)

	o.Refetch()
	state = o.State()
	require.NoError(t, state.Err)
	require.Equal(t, StatusPending, state.Status)
	require.True(t, state.IsLoading)

	fetcher.results <- result{err: errors.New("second")}
	state = settle(t, o)
	require.EqualError(t, state.Err, "second")
	require.Equal(t, 2, state.ErrUpdateCount)
}

func TestStaleTime(t *testing.T) {
	testCases := []struct {
		name           string
		staleTime      time.Duration
		expectedFetchs int
	}{
		{
			name:           "always stale",
			staleTime:      0,
			expectedFetchs: 2,
		},
		{
			name:           "still fresh",
			staleTime:      time.Hour,
			expectedFetchs: 1,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			fetcher := newFakeFetcher()
			client := NewClient()
			opts := Options{
				Key:       Key{"all-tasks", "w1"},
				Fn:        fetcher.fetch,
				Enabled:   true,
				StaleTime: testCase.staleTime,
			}
			first := client.Observe(opts)
			first.Mount(context.Background())
			fetcher.results <- result{data: 1}
			settle(t, first)
			first.Unmount()

			fetcher.results <- result{data: 2}
			second := client.Observe(opts)
			second.Mount(context.Background())
			defer second.Unmount()
			settle(t, second)
			require.Equal(t, testCase.expectedFetchs, fetcher.callCount())
		})
	}
}

func TestConcurrentMountsShareOneFetch(t *testing.T) {
	fetcher := newFakeFetcher()
	client := NewClient()
	opts := Options{
		Key:     Key{"all-tasks", "w1"},
		Fn:      fetcher.fetch,
		Enabled: true,
	}
	first := client.Observe(opts)
	second := client.Observe(opts)
	first.Mount(context.Background())
	defer first.Unmount()
	second.Mount(context.Background())
	defer second.Unmount()
	fetcher.results <- result{data: "tasks"}
	require.Equal(t, "tasks", settle(t, first).Data)
	require.Equal(t, "tasks", settle(t, second).Data)
	require.Equal(t, 1, fetcher.callCount())
}

func TestUnmountAbandonsInFlightFetch(t *testing.T) {
	fetcher := newFakeFetcher()
	o := NewClient().Observe(
		Options{
			Key:     Key{"all-tasks", "w1"},
			Fn:      fetcher.fetch,
			Enabled: true,
		},
	)
	published := 0
	o.Subscribe(func(State) {
		published++
	})
	o.Mount(context.Background())
	require.Equal(t, 1, published)
	o.Unmount()
	state := o.State()
	require.False(t, state.IsFetching)
	require.False(t, state.IsLoading)
	// Nothing is published after unmounting
	fetcher.results <- result{data: "late"}
	state = settle(t, o)
	require.Nil(t, state.Data)
	require.Equal(t, 1, published)
}

func TestSettledHonorsContext(t *testing.T) {
	fetcher := newFakeFetcher()
	o := NewClient().Observe(
		Options{
			Key:     Key{"auth-user"},
			Fn:      fetcher.fetch,
			Enabled: true,
		},
	)
	o.Mount(context.Background())
	defer o.Unmount()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	state, err := o.Settled(ctx)
	require.Equal(t, context.DeadlineExceeded, err)
	require.True(t, state.IsLoading)
}
