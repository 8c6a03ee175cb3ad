// Package tracer drives the sampling loop that correlates RAPL energy
// counters with a target process's CPU activity.
//
// Overview
//
//   - Lifecycle: a Tracer moves Initializing -> Running -> Finished. New
//     validates the config, Run performs calibration and baselining, then
//     loops until the configured duration elapses, the target process
//     exits, or the context is cancelled. All three are clean
//     terminators: whatever was committed is finalized and returned.
//
//   - Calibration: the power unit register is read once at startup and
//     the resulting Joules-per-count scalar is immutable for the run.
//
//   - Baselining: every known domain gets one initial read. A domain
//     that does not answer is dropped for the rest of the run and never
//     re-attempted.
//
//   - Ticking: the loop is keyed off wall-clock time, not counter time.
//     Between ticks it sleeps in bounded increments (~100ms) so the
//     sampling interval is honored without busy-waiting. On each tick
//     the raw counter delta is corrected for wraparound of the counter's
//     fixed 32-bit width before being scaled to Joules.
//
//   - Gating: with a target pid configured, a tick only commits when the
//     process's cumulative runtime advanced since the previous tick.
//     Previous counter readings advance either way, so deltas never
//     compound across skipped ticks. Without a pid, every tick commits.
//
//   - Failure policy: a failed counter read means "no data this tick"
//     for that domain; the loop never aborts the run over a single
//     domain failure. A vanished target process ends the loop but not
//     the program; the partial trace is still reported.
//
// The clock is injectable (k8s.io/utils/clock) so tests can drive the
// loop deterministically with a fake clock.
package tracer
