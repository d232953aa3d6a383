package query

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivateLoadsData(t *testing.T) {
	q := New(func(ctx context.Context) (int, error) {
		return 42, nil
	}, Options{})

	require.True(t, q.Loading(), "enabled query starts in loading state")

	q.Activate(context.Background())

	data, ok := q.Data()
	require.True(t, ok)
	assert.Equal(t, 42, data)
	assert.False(t, q.Loading())
	assert.Empty(t, q.Err())
}

func TestDisabledNeverRuns(t *testing.T) {
	calls := 0
	q := New(func(ctx context.Context) (int, error) {
		calls++
		return 1, nil
	}, Options{Disabled: true})

	assert.False(t, q.Loading())

	q.Activate(context.Background())
	q.Reload(context.Background())

	_, ok := q.Data()
	assert.False(t, ok)
	assert.Zero(t, calls)
}

func TestSkipInitialAllowsExplicitReload(t *testing.T) {
	calls := 0
	q := New(func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}, Options{SkipInitial: true})

	assert.False(t, q.Loading())

	q.Activate(context.Background())
	assert.Zero(t, calls, "Activate must not run when SkipInitial is set")

	q.Reload(context.Background())
	data, ok := q.Data()
	require.True(t, ok)
	assert.Equal(t, 1, data)
}

func TestNilFetchBehavesAsDisabled(t *testing.T) {
	q := New[int](nil, Options{})
	q.Activate(context.Background())
	q.Reload(context.Background())

	_, ok := q.Data()
	assert.False(t, ok)
	assert.False(t, q.Loading())
}

func TestErrorKeepsPreviousData(t *testing.T) {
	fail := false
	q := New(func(ctx context.Context) (string, error) {
		if fail {
			return "", fmt.Errorf("backend unavailable")
		}
		return "good", nil
	}, Options{})

	q.Activate(context.Background())
	data, ok := q.Data()
	require.True(t, ok)
	require.Equal(t, "good", data)

	fail = true
	q.Reload(context.Background())

	data, ok = q.Data()
	assert.True(t, ok, "failed reload must not drop loaded data")
	assert.Equal(t, "good", data)
	assert.Equal(t, "backend unavailable", q.Err())

	fail = false
	q.Reload(context.Background())
	assert.Empty(t, q.Err(), "successful reload clears the error")
}

func TestStaleReloadIsDiscarded(t *testing.T) {
	// The first reload blocks until released; a second reload completes first.
	// The first result must be discarded even though it resolves last.
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	first := true
	var mu sync.Mutex

	q := New(func(ctx context.Context) (string, error) {
		mu.Lock()
		isFirst := first
		first = false
		mu.Unlock()

		if isFirst {
			once.Do(func() { close(started) })
			<-release
			return "stale", nil
		}
		return "fresh", nil
	}, Options{SkipInitial: true})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		q.Reload(context.Background())
	}()

	// Wait until the first fetch is parked before starting the second.
	<-started

	q.Reload(context.Background())
	data, ok := q.Data()
	require.True(t, ok)
	require.Equal(t, "fresh", data)

	close(release)
	wg.Wait()

	data, _ = q.Data()
	assert.Equal(t, "fresh", data, "superseded reload must not overwrite newer data")
}

func TestOnChangeFiresPerTransition(t *testing.T) {
	q := New(func(ctx context.Context) (int, error) {
		return 7, nil
	}, Options{SkipInitial: true})

	transitions := 0
	q.OnChange(func() { transitions++ })

	q.Reload(context.Background())

	// One notification entering loading, one leaving it.
	assert.Equal(t, 2, transitions)
}

func TestSetFetchDoesNotRun(t *testing.T) {
	calls := 0
	q := New(func(ctx context.Context) (int, error) {
		calls++
		return 1, nil
	}, Options{SkipInitial: true})

	q.SetFetch(func(ctx context.Context) (int, error) {
		calls++
		return 2, nil
	})
	assert.Zero(t, calls, "swapping the fetch function must not trigger a run")

	q.Reload(context.Background())
	data, _ := q.Data()
	assert.Equal(t, 2, data)
}
