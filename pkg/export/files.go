package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jszwec/csvutil"

	"github.com/rapltrace/rapltrace/pkg/trace"
)

// BaseName returns the export file prefix for one run, named by the
// target pid (or its absence) and the run's start timestamp.
func BaseName(pid int, start time.Time) string {
	target := "system"
	if pid > 0 {
		target = fmt.Sprintf("pid%d", pid)
	}
	return fmt.Sprintf("energy_trace_%s_%s", target, start.Format("20060102_150405"))
}

// WriteFiles writes the three per-run CSVs (energy matrix, power matrix,
// summary table) into dir and returns their paths.
func WriteFiles(dir string, pid int, tr *trace.Trace) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create output dir: %w", err)
	}

	base := BaseName(pid, tr.Start)
	outputs := []struct {
		suffix string
		rows   any
	}{
		{"_energy.csv", EnergyMatrix(tr)},
		{"_power.csv", PowerMatrix(tr)},
		{"_summary.csv", SummaryRows(tr)},
	}

	files := make([]string, 0, len(outputs))
	for _, out := range outputs {
		b, err := csvutil.Marshal(out.rows)
		if err != nil {
			return nil, fmt.Errorf("export: marshal %s: %w", out.suffix, err)
		}
		path := filepath.Join(dir, base+out.suffix)
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return nil, fmt.Errorf("export: write %s: %w", path, err)
		}
		files = append(files, path)
	}
	return files, nil
}
