package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeKPIs_Example(t *testing.T) {
	t.Parallel()

	k := ComputeKPIs(classified(
		flight("JFK", "AA", time.June, nil),
		flight("JFK", "AA", time.June, mins(5)),
		flight("JFK", "AA", time.June, mins(20)),
		flight("JFK", "AA", time.June, mins(90)),
	))

	assert.Equal(t, 4, k.TotalFlights)
	assert.Equal(t, 1, k.Cancelled)
	assert.Equal(t, 3, k.Departed)
	assert.Equal(t, 2, k.Delayed)
	assert.Equal(t, 1, k.OnTime)
	assert.InDelta(t, 66.7, k.DelayRate, 0.05)
	assert.InDelta(t, 33.3, k.OnTimeRate, 0.05)
}

func TestComputeKPIs_Empty(t *testing.T) {
	t.Parallel()

	k := ComputeKPIs(nil)
	assert.Equal(t, KPIs{}, k)
}

func TestComputeKPIs_AllCancelled(t *testing.T) {
	t.Parallel()

	k := ComputeKPIs(classified(flight("EWR", "UA", time.July, nil), flight("EWR", "UA", time.July, nil)))
	assert.Equal(t, 2, k.TotalFlights)
	assert.Equal(t, 2, k.Cancelled)
	assert.Zero(t, k.DelayRate)
	assert.Zero(t, k.OnTimeRate)
}

func TestComputeKPIs_Invariants(t *testing.T) {
	t.Parallel()

	delays := []int{-20, -1, 0, 3, 15, 16, 44, 60, 61, 300}
	var fs []*int
	for i := range delays {
		fs = append(fs, &delays[i])
	}
	fs = append(fs, nil, nil)

	for n := 0; n <= len(fs); n++ {
		var input = classified()
		for _, d := range fs[:n] {
			input = append(input, classified(flight("JFK", "B6", time.August, d))...)
		}
		k := ComputeKPIs(input)

		assert.Equal(t, k.TotalFlights, k.Cancelled+k.Departed+k.Unclassified)
		assert.Equal(t, k.Departed, k.Delayed+k.OnTime)
		if k.Departed > 0 {
			assert.InDelta(t, 100.0, k.DelayRate+k.OnTimeRate, 1e-9)
		} else {
			assert.Zero(t, k.DelayRate)
			assert.Zero(t, k.OnTimeRate)
		}
	}
}

func TestComputeKPIs_Unclassified(t *testing.T) {
	t.Parallel()

	f := flight("JFK", "AA", time.June, mins(30))
	f.DepartureDelay = nil
	k := ComputeKPIs(classified(f, flight("JFK", "AA", time.June, mins(2))))

	assert.Equal(t, 2, k.TotalFlights)
	assert.Equal(t, 1, k.Unclassified)
	assert.Equal(t, 1, k.Departed)
	assert.InDelta(t, 100.0, k.OnTimeRate, 1e-9)
}
