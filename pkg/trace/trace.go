package trace

import (
	"fmt"
	"time"

	"github.com/rapltrace/rapltrace/pkg/rapl"
)

// IntervalRecord is one committed sample for one domain.
type IntervalRecord struct {
	// Elapsed is the time since trace start at the moment of commit.
	Elapsed time.Duration
	// EnergyDelta is the energy consumed since the previous tick, in Joules.
	EnergyDelta float64
	// Power is EnergyDelta over the wall-clock window, in Watts.
	Power float64
	// CPUID is the logical CPU the target process was last observed on,
	// or the fixed monitoring CPU when no target process is configured.
	CPUID int
}

// DomainTrace holds the committed intervals and running total of one
// domain. Intervals are append-only and ordered by time of commit.
type DomainTrace struct {
	Domain           rapl.Domain
	CumulativeEnergy float64 // Joules
	Intervals        []IntervalRecord
}

// Summary aggregates a domain's committed intervals.
type Summary struct {
	Domain      rapl.Domain
	TotalEnergy float64 // Joules
	AvgPower    float64 // Watts
	MaxPower    float64
	MinPower    float64
	Samples     int
}

// Summary reduces the domain's intervals. ok is false when no interval
// was ever committed for the domain.
func (dt *DomainTrace) Summary() (s Summary, ok bool) {
	if len(dt.Intervals) == 0 {
		return Summary{}, false
	}
	s = Summary{
		Domain:      dt.Domain,
		TotalEnergy: dt.CumulativeEnergy,
		Samples:     len(dt.Intervals),
		MaxPower:    dt.Intervals[0].Power,
		MinPower:    dt.Intervals[0].Power,
	}
	var sum float64
	for _, iv := range dt.Intervals {
		sum += iv.Power
		if iv.Power > s.MaxPower {
			s.MaxPower = iv.Power
		}
		if iv.Power < s.MinPower {
			s.MinPower = iv.Power
		}
	}
	s.AvgPower = sum / float64(len(dt.Intervals))
	return s, true
}

// Trace is the aggregate of all tracked domains for one run. It is
// mutated only by the sampling engine that owns it; once the run ends
// the engine hands it over and it is read-only from then on.
type Trace struct {
	Start   time.Time
	domains []*DomainTrace
	index   map[rapl.Domain]*DomainTrace
}

// New creates a trace tracking the given domains, preserving their order.
func New(start time.Time, domains []rapl.Domain) *Trace {
	t := &Trace{
		Start: start,
		index: make(map[rapl.Domain]*DomainTrace, len(domains)),
	}
	for _, d := range domains {
		dt := &DomainTrace{Domain: d}
		t.domains = append(t.domains, dt)
		t.index[d] = dt
	}
	return t
}

// Record appends one interval to a tracked domain and adds its energy
// delta to the domain's running total.
func (t *Trace) Record(d rapl.Domain, rec IntervalRecord) error {
	dt, ok := t.index[d]
	if !ok {
		return fmt.Errorf("trace: domain %s not tracked", d)
	}
	dt.Intervals = append(dt.Intervals, rec)
	dt.CumulativeEnergy += rec.EnergyDelta
	return nil
}

// Domains returns the tracked domains in their sampling order.
func (t *Trace) Domains() []*DomainTrace {
	return t.domains
}

// Domain returns the trace of one domain, if tracked.
func (t *Trace) Domain(d rapl.Domain) (*DomainTrace, bool) {
	dt, ok := t.index[d]
	return dt, ok
}
