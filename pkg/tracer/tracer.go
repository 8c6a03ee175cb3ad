//go:build linux

package tracer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/utils/clock"

	"github.com/rapltrace/rapltrace/pkg/rapl"
	"github.com/rapltrace/rapltrace/pkg/sched"
	"github.com/rapltrace/rapltrace/pkg/system/util"
	"github.com/rapltrace/rapltrace/pkg/trace"
	"github.com/rapltrace/rapltrace/pkg/types"
)

// MinInterval is the smallest accepted sampling interval.
const MinInterval = time.Millisecond

// defaultPoll is the granularity of the bounded sleeps that throttle the
// busy-check cadence between ticks.
const defaultPoll = 100 * time.Millisecond

// State is the tracer lifecycle state.
type State int

const (
	StateInitializing State = iota
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// CounterSource reads raw 64-bit energy counter registers.
type CounterSource interface {
	Read(register uint32) (uint64, error)
}

// SnapshotSource reads the target process's scheduling state.
type SnapshotSource interface {
	Read(pid int) (sched.Snapshot, error)
}

// Config holds the parameters of one trace run.
type Config struct {
	// Duration is the total trace duration. Required.
	Duration time.Duration
	// Interval is the sampling interval; defaults to 1s, floor 1ms.
	Interval time.Duration
	// PID is the target process. Zero means no process gating: every
	// tick commits a recording for every tracked domain.
	PID int
	// MonitorCPU is the logical CPU recorded on intervals when no
	// target process is configured.
	MonitorCPU int
	// Poll overrides the busy-check sleep granularity; defaults to 100ms.
	Poll time.Duration
}

// Tracer samples per-domain energy counters over wall-clock time and
// correlates them with the target process's CPU activity. One Tracer
// drives one run; it exclusively owns the Trace until Run returns it.
type Tracer struct {
	cfg      Config
	counters CounterSource
	procs    SnapshotSource
	clk      clock.WithTicker
	log      *slog.Logger

	unit    float64
	state   State
	tracked []trackedDomain
}

// trackedDomain pairs a domain with its previous counter reading.
type trackedDomain struct {
	domain rapl.Domain
	prev   uint32
}

// New validates the config and builds a tracer. Validation failures are
// fatal: no sampling state is created.
func New(cfg Config, counters CounterSource, procs SnapshotSource, opts ...Option) (*Tracer, error) {
	if counters == nil {
		return nil, ErrNoCounterSource
	}
	if cfg.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Second
	}
	if cfg.Interval < MinInterval {
		return nil, ErrInvalidInterval
	}
	if cfg.PID > 0 && procs == nil {
		return nil, ErrNoSnapshotSource
	}
	if cfg.Poll <= 0 {
		cfg.Poll = defaultPoll
	}

	t := &Tracer{
		cfg:      cfg,
		counters: counters,
		procs:    procs,
		clk:      clock.RealClock{},
		log:      slog.Default().With("service", "tracer"),
		state:    StateInitializing,
	}
	for _, apply := range opts {
		apply(t)
	}
	return t, nil
}

// State returns the tracer lifecycle state.
func (t *Tracer) State() State { return t.state }

// EnergyUnit returns the calibration scalar in Joules per raw counter
// increment. Valid once Run has started.
func (t *Tracer) EnergyUnit() float64 { return t.unit }

// Run drives the sampling loop until the configured duration elapses,
// the target process exits, or ctx is cancelled. Cancellation is a clean
// terminator: the partial trace is finalized and returned. The returned
// Trace is handed over for read-only use.
func (t *Tracer) Run(ctx context.Context) (*trace.Trace, error) {
	if t.state != StateInitializing {
		return nil, ErrAlreadyRun
	}
	defer func() { t.state = StateFinished }()

	if err := t.calibrate(); err != nil {
		return nil, err
	}
	if err := t.baseline(); err != nil {
		return nil, err
	}

	domains := make([]rapl.Domain, len(t.tracked))
	for i, td := range t.tracked {
		domains[i] = td.domain
	}

	cpuID := t.cfg.MonitorCPU
	var lastRuntime uint64
	if t.cfg.PID > 0 {
		snap, err := t.procs.Read(t.cfg.PID)
		switch {
		case errors.Is(err, sched.ErrProcessNotFound):
			t.log.Info("target process already gone", "pid", t.cfg.PID)
			return trace.New(t.clk.Now(), domains), nil
		case err != nil:
			t.log.Warn("initial process snapshot failed", "pid", t.cfg.PID, "error", err)
		default:
			lastRuntime = snap.RuntimeNS
			cpuID = snap.LastCPU
			t.log.Info("initial process state",
				"pid", t.cfg.PID,
				"state", snap.State,
				"cpu", snap.LastCPU,
				"voluntary_switches", snap.VoluntarySwitches,
				"nonvoluntary_switches", snap.NonvoluntarySwitches)
		}
	}

	start := t.clk.Now()
	tr := trace.New(start, domains)
	lastTick := start
	t.state = StateRunning
	t.log.Info("trace started",
		"duration", t.cfg.Duration,
		"interval", t.cfg.Interval,
		"domains", len(domains))

loop:
	for {
		if ctx.Err() != nil {
			t.log.Info("trace cancelled, finalizing report")
			break
		}

		now := t.clk.Now()
		elapsed := now.Sub(lastTick)
		if elapsed >= t.cfg.Interval {
			commit := true
			if t.cfg.PID > 0 {
				snap, err := t.procs.Read(t.cfg.PID)
				switch {
				case errors.Is(err, sched.ErrProcessNotFound):
					t.log.Info("target process exited", "pid", t.cfg.PID)
					break loop
				case err != nil:
					// no data this tick; counters still advance below
					t.log.Warn("process snapshot failed", "pid", t.cfg.PID, "error", err)
					commit = false
				default:
					runDelta := util.DeltaU64(snap.RuntimeNS, lastRuntime)
					lastRuntime = snap.RuntimeNS
					cpuID = snap.LastCPU
					commit = runDelta > 0
					if commit {
						t.log.Info("tick",
							"elapsed", now.Sub(start).Round(time.Millisecond),
							"cpu", snap.LastCPU,
							"state", snap.State,
							"cpu_time", time.Duration(runDelta),
							"voluntary_switches", snap.VoluntarySwitches,
							"nonvoluntary_switches", snap.NonvoluntarySwitches)
					} else {
						t.log.Debug("tick gated, target process idle",
							"elapsed", now.Sub(start).Round(time.Millisecond))
					}
				}
			}
			t.sampleDomains(tr, commit, now.Sub(start), elapsed, cpuID)
			lastTick = now
		}

		if now.Sub(start) >= t.cfg.Duration {
			break
		}

		wait := t.cfg.Interval - t.clk.Since(lastTick)
		if wait > t.cfg.Poll {
			wait = t.cfg.Poll
		}
		if wait <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			t.log.Info("trace cancelled, finalizing report")
			break loop
		case <-t.clk.After(wait):
		}
	}

	return tr, nil
}

// calibrate reads the power unit register once; failure here is fatal.
func (t *Tracer) calibrate() error {
	raw, err := t.counters.Read(rapl.MSRPowerUnit)
	if err != nil {
		return fmt.Errorf("tracer: read power unit register: %w", err)
	}
	t.unit = rapl.ParseEnergyUnit(raw)
	t.log.Info("rapl energy unit", "joules_per_count", t.unit)
	return nil
}

// baseline takes one reading from every known domain. Domains that do
// not answer are dropped for the rest of the run and never re-attempted.
func (t *Tracer) baseline() error {
	for _, d := range rapl.Domains() {
		raw, err := t.counters.Read(d.Register())
		if err != nil {
			t.log.Debug("domain unavailable, dropped", "domain", d.String(), "error", err)
			continue
		}
		t.tracked = append(t.tracked, trackedDomain{domain: d, prev: rapl.Counter(raw)})
		t.log.Info("tracking domain", "domain", d.String())
	}
	if len(t.tracked) == 0 {
		return ErrNoDomains
	}
	return nil
}

// sampleDomains reads every tracked domain's counter, committing an
// interval record when commit is set. Previous readings advance to the
// current value whenever the read succeeds, committed or not, so deltas
// never compound across skipped ticks. A failed read keeps the previous
// reading, letting the next successful delta span the gap.
func (t *Tracer) sampleDomains(tr *trace.Trace, commit bool, sinceStart, window time.Duration, cpuID int) {
	for i := range t.tracked {
		td := &t.tracked[i]
		raw, err := t.counters.Read(td.domain.Register())
		if err != nil {
			t.log.Debug("counter read failed", "domain", td.domain.String(), "error", err)
			continue
		}
		cur := rapl.Counter(raw)
		if commit {
			energy := float64(rapl.CounterDelta(cur, td.prev)) * t.unit
			power := util.SafeDiv(energy, window.Seconds())
			_ = tr.Record(td.domain, trace.IntervalRecord{
				Elapsed:     sinceStart,
				EnergyDelta: energy,
				Power:       power,
				CPUID:       cpuID,
			})
			t.log.Debug("recorded interval",
				"domain", td.domain.String(),
				"energy", types.Joules(energy).String(),
				"power", types.Watts(power).String())
		}
		td.prev = cur
	}
}
