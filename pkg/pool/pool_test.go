package pool_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/herohde/ccmatch/pkg/affinity"
	"github.com/herohde/ccmatch/pkg/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsAllTasksConcurrently(t *testing.T) {
	ctx := context.Background()
	mgr := affinity.NewManager(false, 1, nil)
	p := pool.New(ctx, 3, mgr)
	defer p.Stop()

	var completed int32
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			errs <- p.Submit(ctx, func(ctx context.Context, core *affinity.Core) error {
				atomic.AddInt32(&completed, 1)
				return nil
			})
		}()
	}

	for i := 0; i < 10; i++ {
		require.NoError(t, <-errs)
	}
	assert.EqualValues(t, 10, completed)
}

func TestPoolPropagatesTaskError(t *testing.T) {
	ctx := context.Background()
	mgr := affinity.NewManager(false, 1, nil)
	p := pool.New(ctx, 1, mgr)
	defer p.Stop()

	boom := assert.AnError
	err := p.Submit(ctx, func(ctx context.Context, core *affinity.Core) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}
