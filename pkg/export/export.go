package export

import (
	"slices"
	"strconv"

	"github.com/rapltrace/rapltrace/pkg/rapl"
	"github.com/rapltrace/rapltrace/pkg/trace"
)

// Fixed6 is a float64 rendered with six decimal places in CSV cells.
type Fixed6 float64

func (f Fixed6) MarshalCSV() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(f), 'f', 6, 64), nil
}

func (f *Fixed6) UnmarshalCSV(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = Fixed6(v)
	return nil
}

// MatrixRow is one pivoted export row: one distinct timestamp across any
// domain, one column per domain. A domain with no recording at that
// timestamp keeps a zero cell.
type MatrixRow struct {
	Timestamp string `csv:"timestamp"`
	Package   Fixed6 `csv:"package"`
	Core      Fixed6 `csv:"core"`
	Uncore    Fixed6 `csv:"uncore"`
	Dram      Fixed6 `csv:"dram"`
	Platform  Fixed6 `csv:"platform"`
	CPU       int    `csv:"cpu"`
}

func (r *MatrixRow) set(d rapl.Domain, v float64) {
	switch d {
	case rapl.Package:
		r.Package = Fixed6(v)
	case rapl.CpuCores:
		r.Core = Fixed6(v)
	case rapl.Uncore:
		r.Uncore = Fixed6(v)
	case rapl.Dram:
		r.Dram = Fixed6(v)
	case rapl.PlatformTotal:
		r.Platform = Fixed6(v)
	}
}

// SummaryRow is one per-domain aggregate export row.
type SummaryRow struct {
	Domain      string `csv:"domain"`
	TotalEnergy Fixed6 `csv:"total_energy"`
	AvgPower    Fixed6 `csv:"avg_power"`
	MaxPower    Fixed6 `csv:"max_power"`
	MinPower    Fixed6 `csv:"min_power"`
}

// buildMatrix pivots interval records into timestamp-keyed rows. Rows are
// keyed by the interval's elapsed milliseconds (a typed numeric key, so
// formatting can never collide or misorder) and sorted ascending.
func buildMatrix(tr *trace.Trace, value func(trace.IntervalRecord) float64) []MatrixRow {
	rows := make(map[int64]*MatrixRow)
	var keys []int64

	for _, dt := range tr.Domains() {
		for _, iv := range dt.Intervals {
			k := iv.Elapsed.Milliseconds()
			row, ok := rows[k]
			if !ok {
				row = &MatrixRow{Timestamp: formatKey(k)}
				rows[k] = row
				keys = append(keys, k)
			}
			row.set(dt.Domain, value(iv))
			row.CPU = iv.CPUID
		}
	}

	slices.Sort(keys)
	out := make([]MatrixRow, 0, len(keys))
	for _, k := range keys {
		out = append(out, *rows[k])
	}
	return out
}

// formatKey renders a millisecond key as seconds with fixed precision.
func formatKey(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}

// EnergyMatrix pivots per-domain energy deltas by timestamp.
func EnergyMatrix(tr *trace.Trace) []MatrixRow {
	return buildMatrix(tr, func(iv trace.IntervalRecord) float64 { return iv.EnergyDelta })
}

// PowerMatrix pivots per-domain power values by timestamp. It has the
// same row set and cpu column as the energy matrix.
func PowerMatrix(tr *trace.Trace) []MatrixRow {
	return buildMatrix(tr, func(iv trace.IntervalRecord) float64 { return iv.Power })
}

// SummaryRows aggregates each domain that committed at least one
// interval. Domains with zero intervals are left out.
func SummaryRows(tr *trace.Trace) []SummaryRow {
	out := make([]SummaryRow, 0, len(tr.Domains()))
	for _, dt := range tr.Domains() {
		s, ok := dt.Summary()
		if !ok {
			continue
		}
		out = append(out, SummaryRow{
			Domain:      s.Domain.Label(),
			TotalEnergy: Fixed6(s.TotalEnergy),
			AvgPower:    Fixed6(s.AvgPower),
			MaxPower:    Fixed6(s.MaxPower),
			MinPower:    Fixed6(s.MinPower),
		})
	}
	return out
}
