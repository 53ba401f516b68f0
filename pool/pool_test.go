package pool

import (
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapOrderAlignment(t *testing.T) {
	const n = 40
	for _, limit := range []int{1, 3, 7, n} {
		t.Run(fmt.Sprintf("limit=%d", limit), func(t *testing.T) {
			units := make([]func() (int, error), n)
			for i := 0; i < n; i++ {
				i := i
				units[i] = func() (int, error) {
					// Random delays shuffle completion order.
					time.Sleep(time.Duration(rand.Intn(3)) * time.Millisecond)
					return i, nil
				}
			}

			results := Map(limit, units)
			require.Len(t, results, n)
			for i, res := range results {
				require.NoError(t, res.Err)
				assert.Equal(t, i, res.Value)
			}
		})
	}
}

func TestMapConcurrencyCeiling(t *testing.T) {
	const n = 50
	const limit = 4

	var inFlight, peak atomic.Int64
	units := make([]func() (struct{}, error), n)
	for i := 0; i < n; i++ {
		units[i] = func() (struct{}, error) {
			cur := inFlight.Add(1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
			return struct{}{}, nil
		}
	}

	Map(limit, units)
	assert.LessOrEqual(t, peak.Load(), int64(limit))
}

func TestMapCapturesErrors(t *testing.T) {
	boom := errors.New("boom")
	units := []func() (string, error){
		func() (string, error) { return "a", nil },
		func() (string, error) { return "", boom },
		func() (string, error) { return "c", nil },
	}

	results := Map(2, units)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Value)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, "c", results[2].Value)
	assert.NoError(t, results[2].Err)
}

func TestMapRunsEverythingWithTinyLimit(t *testing.T) {
	var ran atomic.Int64
	units := make([]func() (int, error), 100)
	for i := range units {
		units[i] = func() (int, error) {
			ran.Add(1)
			return 0, nil
		}
	}

	Map(1, units)
	assert.Equal(t, int64(100), ran.Load())
}

func TestMapEmptyInput(t *testing.T) {
	results := Map[int](8, nil)
	assert.Empty(t, results)
}
