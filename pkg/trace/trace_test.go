package trace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rapltrace/rapltrace/pkg/rapl"
)

func rec(elapsed time.Duration, energy, power float64) IntervalRecord {
	return IntervalRecord{Elapsed: elapsed, EnergyDelta: energy, Power: power, CPUID: 0}
}

func TestTrace_RecordAccumulates(t *testing.T) {
	tr := New(time.Now(), []rapl.Domain{rapl.Package, rapl.Dram})

	require.NoError(t, tr.Record(rapl.Package, rec(time.Second, 0.5, 0.5)))
	require.NoError(t, tr.Record(rapl.Package, rec(2*time.Second, 0.7, 0.7)))
	require.NoError(t, tr.Record(rapl.Dram, rec(time.Second, 0.1, 0.1)))

	pkg, ok := tr.Domain(rapl.Package)
	require.True(t, ok)
	assert.Len(t, pkg.Intervals, 2)
	assert.InDelta(t, 1.2, pkg.CumulativeEnergy, 1e-12)

	dram, ok := tr.Domain(rapl.Dram)
	require.True(t, ok)
	assert.Len(t, dram.Intervals, 1)
}

func TestTrace_PrefixSumInvariant(t *testing.T) {
	tr := New(time.Now(), []rapl.Domain{rapl.Package})

	var sum float64
	for i := 1; i <= 10; i++ {
		e := 0.05 * float64(i)
		require.NoError(t, tr.Record(rapl.Package, rec(time.Duration(i)*time.Second, e, e)))
		sum += e

		// cumulative energy equals the interval sum at every point in the run
		pkg, _ := tr.Domain(rapl.Package)
		assert.InDelta(t, sum, pkg.CumulativeEnergy, 1e-12, "after %d records", i)
	}
}

func TestTrace_ElapsedNonDecreasing(t *testing.T) {
	tr := New(time.Now(), []rapl.Domain{rapl.Package})
	for i := 1; i <= 5; i++ {
		require.NoError(t, tr.Record(rapl.Package, rec(time.Duration(i)*time.Second, 0.1, 0.1)))
	}

	pkg, _ := tr.Domain(rapl.Package)
	for i := 1; i < len(pkg.Intervals); i++ {
		assert.GreaterOrEqual(t, pkg.Intervals[i].Elapsed, pkg.Intervals[i-1].Elapsed)
	}
}

func TestTrace_UntrackedDomain(t *testing.T) {
	tr := New(time.Now(), []rapl.Domain{rapl.Package})

	err := tr.Record(rapl.Dram, rec(time.Second, 0.1, 0.1))
	require.Error(t, err)

	_, ok := tr.Domain(rapl.Dram)
	assert.False(t, ok)
}

func TestDomainTrace_Summary(t *testing.T) {
	tr := New(time.Now(), []rapl.Domain{rapl.Package, rapl.Uncore})

	powers := []float64{0.3, 0.9, 0.6}
	for i, p := range powers {
		require.NoError(t, tr.Record(rapl.Package, rec(time.Duration(i+1)*time.Second, p, p)))
	}

	pkg, _ := tr.Domain(rapl.Package)
	s, ok := pkg.Summary()
	require.True(t, ok)
	assert.Equal(t, rapl.Package, s.Domain)
	assert.Equal(t, 3, s.Samples)
	assert.InDelta(t, 1.8, s.TotalEnergy, 1e-12)
	assert.InDelta(t, 0.6, s.AvgPower, 1e-12)
	assert.InDelta(t, 0.9, s.MaxPower, 1e-12)
	assert.InDelta(t, 0.3, s.MinPower, 1e-12)

	// a domain with zero intervals has no summary
	un, _ := tr.Domain(rapl.Uncore)
	_, ok = un.Summary()
	assert.False(t, ok)
}
