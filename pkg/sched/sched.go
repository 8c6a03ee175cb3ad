//go:build linux

package sched

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/prometheus/procfs"
)

// Snapshot is one observation of a process's scheduling state. It is
// produced fresh on every read and carries no identity beyond that.
type Snapshot struct {
	// State is the short scheduling state code (R, S, D, Z, ...).
	State string
	// LastCPU is the logical CPU the process last ran on.
	LastCPU int
	// RuntimeNS is the cumulative CPU time consumed, in nanoseconds.
	RuntimeNS uint64
	// VoluntarySwitches and NonvoluntarySwitches count context switches
	// since process start.
	VoluntarySwitches    uint64
	NonvoluntarySwitches uint64
}

// Source reads process scheduling snapshots from procfs.
type Source struct {
	fs procfs.FS
}

// NewSource opens the default /proc mount.
func NewSource() (*Source, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("sched: open procfs: %w", err)
	}
	return &Source{fs: fs}, nil
}

// NewSourceAt opens a procfs tree at an explicit mount point. Mainly
// useful for tests against a synthetic tree.
func NewSourceAt(mount string) (*Source, error) {
	fs, err := procfs.NewFS(mount)
	if err != nil {
		return nil, fmt.Errorf("sched: open procfs at %s: %w", mount, err)
	}
	return &Source{fs: fs}, nil
}

// Read returns the current snapshot of the given process. A process that
// no longer exists yields ErrProcessNotFound; any other failure is a
// read error.
func (s *Source) Read(pid int) (Snapshot, error) {
	p, err := s.fs.Proc(pid)
	if err != nil {
		return Snapshot{}, wrapNotFound(pid, err)
	}

	stat, err := p.Stat()
	if err != nil {
		return Snapshot{}, wrapNotFound(pid, err)
	}
	schedstat, err := p.Schedstat()
	if err != nil {
		return Snapshot{}, wrapNotFound(pid, err)
	}
	status, err := p.NewStatus()
	if err != nil {
		return Snapshot{}, wrapNotFound(pid, err)
	}

	return Snapshot{
		State:                stat.State,
		LastCPU:              int(stat.Processor),
		RuntimeNS:            schedstat.RunningNanoseconds,
		VoluntarySwitches:    status.VoluntaryCtxtSwitches,
		NonvoluntarySwitches: status.NonVoluntaryCtxtSwitches,
	}, nil
}

// wrapNotFound maps errors caused by the process vanishing to
// ErrProcessNotFound and passes everything else through wrapped.
func wrapNotFound(pid int, err error) error {
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("pid %d: %w", pid, ErrProcessNotFound)
	}
	return fmt.Errorf("sched: read pid %d: %w", pid, err)
}
