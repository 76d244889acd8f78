package apicache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/aurora-cli/internal/clierr"
	"github.com/dyluth/aurora-cli/internal/cluster"
	"github.com/dyluth/aurora-cli/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	cluster  string
	closed   atomic.Bool
	closeErr error
}

func (s *stubClient) ListJobs(context.Context, string) (*scheduler.Response[[]scheduler.JobSummary], error) {
	return scheduler.OK([]scheduler.JobSummary{}), nil
}

func (s *stubClient) GetStatus(context.Context, scheduler.JobKey) (*scheduler.Response[[]scheduler.ScheduledTask], error) {
	return scheduler.OK([]scheduler.ScheduledTask{}), nil
}

func (s *stubClient) Close() error {
	s.closed.Store(true)
	return s.closeErr
}

func testRegistry(t *testing.T, names ...string) *cluster.Registry {
	t.Helper()
	var descs []cluster.Descriptor
	for _, n := range names {
		descs = append(descs, cluster.Descriptor{Name: n, RedisURL: "redis://localhost:6379"})
	}
	r, err := cluster.NewRegistry(descs...)
	require.NoError(t, err)
	return r
}

// countingFactory records how many times each cluster was constructed.
type countingFactory struct {
	mu    sync.Mutex
	calls map[string]int
	delay time.Duration
	fail  map[string]error
}

func newCountingFactory() *countingFactory {
	return &countingFactory{calls: make(map[string]int), fail: make(map[string]error)}
}

func (f *countingFactory) build(_ context.Context, desc cluster.Descriptor) (scheduler.Client, error) {
	f.mu.Lock()
	f.calls[desc.Name]++
	err := f.fail[desc.Name]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err != nil {
		return nil, err
	}
	return &stubClient{cluster: desc.Name}, nil
}

func (f *countingFactory) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func TestCache_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("same handle returned for repeated calls", func(t *testing.T) {
		f := newCountingFactory()
		c := New(testRegistry(t, "west", "east"), f.build)

		h1, err := c.Get(ctx, "west")
		require.NoError(t, err)
		h2, err := c.Get(ctx, "west")
		require.NoError(t, err)
		assert.Same(t, h1, h2)

		h3, err := c.Get(ctx, "east")
		require.NoError(t, err)
		assert.NotSame(t, h1, h3)

		assert.Equal(t, 1, f.count("west"))
		assert.Equal(t, 1, f.count("east"))
		assert.Equal(t, 2, c.Len())
	})

	t.Run("unknown cluster is an invalid parameter", func(t *testing.T) {
		f := newCountingFactory()
		c := New(testRegistry(t, "west"), f.build)

		_, err := c.Get(ctx, "nowhere")
		require.Error(t, err)
		assert.ErrorIs(t, err, clierr.ErrInvalidParameter)
		assert.Equal(t, 0, c.Len())
		assert.Equal(t, 0, f.count("nowhere"))
	})

	t.Run("failed construction is retried", func(t *testing.T) {
		f := newCountingFactory()
		f.fail["west"] = errors.New("auth handshake failed")
		c := New(testRegistry(t, "west"), f.build)

		_, err := c.Get(ctx, "west")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth handshake failed")
		assert.Equal(t, 0, c.Len())

		f.mu.Lock()
		delete(f.fail, "west")
		f.mu.Unlock()

		h, err := c.Get(ctx, "west")
		require.NoError(t, err)
		assert.NotNil(t, h)
		assert.Equal(t, 2, f.count("west"))
	})

	t.Run("concurrent first access constructs once", func(t *testing.T) {
		f := newCountingFactory()
		f.delay = 20 * time.Millisecond
		c := New(testRegistry(t, "west"), f.build)

		const workers = 16
		handles := make([]scheduler.Client, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				h, err := c.Get(ctx, "west")
				assert.NoError(t, err)
				handles[i] = h
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 1, f.count("west"))
		for _, h := range handles {
			assert.Same(t, handles[0], h)
		}
	})
}

func TestCache_Close(t *testing.T) {
	ctx := context.Background()
	f := newCountingFactory()
	c := New(testRegistry(t, "west", "east"), f.build)

	w, err := c.Get(ctx, "west")
	require.NoError(t, err)
	e, err := c.Get(ctx, "east")
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.True(t, w.(*stubClient).closed.Load())
	assert.True(t, e.(*stubClient).closed.Load())
	assert.Equal(t, 0, c.Len())

	_, err = c.Get(ctx, "west")
	assert.ErrorIs(t, err, clierr.ErrCommandFailure)
}

func TestCache_CloseDuringConstruction(t *testing.T) {
	ctx := context.Background()
	closeErr := errors.New("connection reset")
	built := &stubClient{cluster: "west", closeErr: closeErr}

	var c *Cache
	c = New(testRegistry(t, "west"), func(context.Context, cluster.Descriptor) (scheduler.Client, error) {
		require.NoError(t, c.Close())
		return built, nil
	})

	_, err := c.Get(ctx, "west")
	require.Error(t, err)
	assert.ErrorIs(t, err, clierr.ErrCommandFailure)
	assert.ErrorIs(t, err, closeErr)
	assert.Contains(t, err.Error(), "cluster west")
	assert.True(t, built.closed.Load())
	assert.Equal(t, 0, c.Len())
}

func TestCache_RedisFactory(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	reg, err := cluster.NewRegistry(cluster.Descriptor{Name: "west", RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)

	factory := func(ctx context.Context, desc cluster.Descriptor) (scheduler.Client, error) {
		opts, err := desc.RedisOptions()
		if err != nil {
			return nil, err
		}
		return scheduler.NewClient(ctx, opts, desc.Name, desc.AuthModule())
	}

	c := New(reg, factory)
	defer c.Close()

	h, err := c.Get(ctx, "west")
	require.NoError(t, err)

	require.NoError(t, h.(*scheduler.RedisClient).PublishJob(ctx,
		scheduler.JobSummary{Role: "web", Environment: "prod", Name: "frontend", InstanceCount: 2}))

	resp, err := h.ListJobs(ctx, "")
	require.NoError(t, err)
	require.Equal(t, scheduler.ResponseOK, resp.Code)
	require.Len(t, resp.Result, 1)
	assert.Equal(t, "frontend", resp.Result[0].Name)
}
