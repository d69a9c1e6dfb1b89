package commands

import (
	"github.com/systmms/opsync/internal/run"
)

// statusCell formats one target outcome for a summary table.
func statusCell(result run.Result) string {
	switch {
	case result.Skipped:
		return "- skipped"
	case result.Err != nil:
		return "✗ " + run.ErrorKind(result.Err)
	default:
		return "✓ written"
	}
}

// countResults tallies outcomes for the summary line.
func countResults(results []run.Result) (written, failed, skipped int) {
	for _, result := range results {
		switch {
		case result.Skipped:
			skipped++
		case result.Err != nil:
			failed++
		default:
			written++
		}
	}
	return written, failed, skipped
}
