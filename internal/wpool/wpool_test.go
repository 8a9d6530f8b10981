package wpool_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yov-lang/yov/internal/wpool"
)

func TestRunEachRunsEveryItem(t *testing.T) {
	p, err := wpool.New(4)
	require.NoError(t, err)
	defer p.Release()

	var sum int64
	items := []int{1, 2, 3, 4, 5}
	err = wpool.RunEach(p, items, func(n int) error {
		atomic.AddInt64(&sum, int64(n))
		return nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 15, sum)
}

func TestRunEachPropagatesFirstError(t *testing.T) {
	p, err := wpool.New(2)
	require.NoError(t, err)
	defer p.Release()

	boom := errors.New("boom")
	err = wpool.RunEach(p, []int{1, 2, 3}, func(n int) error {
		if n == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestNewDefaultsPoolSize(t *testing.T) {
	p, err := wpool.New(0)
	require.NoError(t, err)
	defer p.Release()
	assert.Equal(t, wpool.DefaultPoolSize, p.Cap())
}
