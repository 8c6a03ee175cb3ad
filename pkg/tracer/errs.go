package tracer

import "errors"

var (
	// ErrInvalidInterval indicates a sampling interval below the 1ms floor.
	ErrInvalidInterval = errors.New("tracer: sampling interval below 1ms")

	// ErrInvalidDuration indicates a non-positive trace duration.
	ErrInvalidDuration = errors.New("tracer: duration must be > 0")

	// ErrNoCounterSource indicates construction without a counter source.
	ErrNoCounterSource = errors.New("tracer: counter source required")

	// ErrNoSnapshotSource indicates a target PID was configured without a
	// process snapshot source to read it from.
	ErrNoSnapshotSource = errors.New("tracer: snapshot source required when a pid is set")

	// ErrNoDomains indicates that no domain answered its baseline read,
	// leaving nothing to trace.
	ErrNoDomains = errors.New("tracer: no readable energy domains")

	// ErrAlreadyRun indicates a second Run on the same tracer.
	ErrAlreadyRun = errors.New("tracer: already run")
)
