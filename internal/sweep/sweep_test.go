package sweep

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/san-kum/delaysim/internal/dynamo"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPartition_CoversEveryIndexOnce(t *testing.T) {
	for _, n := range []int{1, 7, 23, 100} {
		for _, w := range []int{1, 2, 3, 4, 8, 23, 40} {
			seen := make([]int, n)
			var all []int
			for id := 0; id < w; id++ {
				for _, i := range Partition(id, w, n) {
					require.Equal(t, id, i%w, "n=%d w=%d", n, w)
					seen[i]++
					all = append(all, i)
				}
			}
			for i, c := range seen {
				require.Equal(t, 1, c, "n=%d w=%d index %d", n, w, i)
			}
			sort.Ints(all)
			require.Len(t, all, n)
		}
	}
}

func TestPartition_FourWorkersOf23(t *testing.T) {
	want := [][]int{
		{0, 4, 8, 12, 16, 20},
		{1, 5, 9, 13, 17, 21},
		{2, 6, 10, 14, 18, 22},
		{3, 7, 11, 15, 19},
	}
	got := make([][]int, 4)
	for id := range got {
		got[id] = Partition(id, 4, 23)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("partition mismatch (-want +got):\n%s", diff)
	}

	assert.Nil(t, Partition(4, 4, 23))
	assert.Nil(t, Partition(5, 8, 3))
	assert.Nil(t, Partition(0, 0, 3))
}

func TestSpec_Count(t *testing.T) {
	tests := []struct {
		spec Spec
		want int
	}{
		{Spec{Max: 10, Stride: 0.1}, 100},
		{Spec{Max: 1, Stride: 0.3}, 4},
		{Spec{Min: 2, Max: 30, Stride: 0.5}, 56},
		{Spec{Max: 23, Stride: 1}, 23},
		{Spec{Max: 0.5, Stride: 1}, 1},
		{Spec{Max: 5e-10, Stride: 1}, 1},
		{Spec{Min: 1, Max: 1 + 1e-12, Stride: 0.1}, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.spec.Count(), "%+v", tt.spec)
	}
}

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"zero stride", Spec{Max: 1, Workers: 1}},
		{"negative stride", Spec{Max: 1, Stride: -1, Workers: 1}},
		{"empty range", Spec{Min: 1, Max: 1, Stride: 0.1, Workers: 1}},
		{"reversed range", Spec{Min: 2, Max: 1, Stride: 0.1, Workers: 1}},
		{"no workers", Spec{Max: 1, Stride: 0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.spec.Validate(), dynamo.ErrConfig)

			o := New(func(context.Context, int, float64) (float64, error) { return 0, nil })
			res, err := o.Run(context.Background(), tt.spec)
			assert.ErrorIs(t, err, dynamo.ErrConfig)
			assert.Nil(t, res)
		})
	}
}

func TestOrchestrator_WritesEveryIndex(t *testing.T) {
	for _, workers := range []int{1, 4, 8, 64} {
		var calls atomic.Int64
		o := New(func(_ context.Context, i int, v float64) (float64, error) {
			calls.Add(1)
			return 2*v + float64(i), nil
		})

		spec := Spec{Param: "p", Min: 1, Max: 24, Stride: 1, Workers: workers, Observe: "y"}
		res, err := o.Run(context.Background(), spec)
		require.NoError(t, err)

		assert.Equal(t, int64(23), calls.Load())
		require.Len(t, res.Params, 23)
		require.Len(t, res.Values, 23)
		for i := range res.Params {
			assert.Equal(t, float64(1+i), res.Params[i])
			assert.Equal(t, 2*res.Params[i]+float64(i), res.Values[i])
		}
		assert.Equal(t, "p", res.Param)
		assert.Equal(t, "y", res.Observe)
	}
}

func TestOrchestrator_MoreWorkersThanPoints(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]bool{}
	o := New(func(_ context.Context, i int, _ float64) (float64, error) {
		mu.Lock()
		seen[i] = true
		mu.Unlock()
		return 0, nil
	})

	_, err := o.Run(context.Background(), Spec{Max: 3, Stride: 1, Workers: 16})
	require.NoError(t, err)
	assert.Len(t, seen, 3)
}

func TestOrchestrator_FirstFaultFailsSweep(t *testing.T) {
	boom := errors.New("boom")
	o := New(func(_ context.Context, i int, _ float64) (float64, error) {
		if i == 13 {
			return 0, &dynamo.SimulationError{Step: 4, Time: 0.4, Wrapped: dynamo.ErrNonFinite}
		}
		if i == 40 {
			return 0, boom
		}
		return 1, nil
	})

	res, err := o.Run(context.Background(), Spec{Param: "GT", Max: 23, Stride: 1, Workers: 4})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, dynamo.ErrNonFinite)
	assert.Contains(t, err.Error(), "GT=13")
}

func TestOrchestrator_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := New(func(context.Context, int, float64) (float64, error) { return 1, nil })
	_, err := o.Run(ctx, Spec{Max: 10, Stride: 1, Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}
