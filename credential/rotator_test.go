package credential

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRotator_EmptyPool(t *testing.T) {
	r, err := NewRotator(nil)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrEmptyPool)

	r, err = NewRotator([]string{})
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrEmptyPool)
}

func TestRotator_VisitsEachOnceThenWraps(t *testing.T) {
	t.Parallel()

	for _, pool := range [][]string{
		{"only"},
		{"a", "b"},
		{"k1", "k2", "k3", "k4", "k5"},
	} {
		pool := pool
		t.Run(pool[0], func(t *testing.T) {
			t.Parallel()

			r, err := NewRotator(pool)
			require.NoError(t, err)
			require.Equal(t, len(pool), r.Size())

			got := make([]string, 0, len(pool))
			for range pool {
				got = append(got, r.Next())
			}
			assert.Equal(t, pool, got)
			assert.Equal(t, pool[0], r.Next(), "call N+1 must equal call 1")
		})
	}
}

func TestRotator_CopiesPool(t *testing.T) {
	keys := []string{"a", "b"}
	r, err := NewRotator(keys)
	require.NoError(t, err)

	keys[0] = "mutated"
	assert.Equal(t, "a", r.Next())
}

func TestRotator_AnonymousSlot(t *testing.T) {
	r, err := NewRotator([]string{""})
	require.NoError(t, err)

	idx, key := r.NextSlot()
	assert.Equal(t, 0, idx)
	assert.Equal(t, "", key)
}

func TestRotator_ConcurrentNextSpreadsEvenly(t *testing.T) {
	r, err := NewRotator([]string{"a", "b", "c"})
	require.NoError(t, err)

	const perWorker = 100
	var (
		mu     sync.Mutex
		counts = map[string]int{}
		wg     sync.WaitGroup
	)
	for w := 0; w < 6; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := map[string]int{}
			for i := 0; i < perWorker; i++ {
				local[r.Next()]++
			}
			mu.Lock()
			for k, v := range local {
				counts[k] += v
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, map[string]int{"a": 200, "b": 200, "c": 200}, counts)
}
