// Package report provides adapters for writing the sync summary.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MyCarrier-DevOps/repo-mirror/internal/domain"
)

// Writer writes the sync summary to the configured output destination.
// By default, it writes to stdout.
type Writer struct {
	out io.Writer
}

// NewWriter creates a new Writer that writes to stdout.
func NewWriter() *Writer {
	return &Writer{out: os.Stdout}
}

// NewWriterWithOutput creates a new Writer with a custom output destination.
// This is useful for testing.
func NewWriterWithOutput(out io.Writer) *Writer {
	return &Writer{out: out}
}

// WriteReport writes a short human-readable summary of the sync run.
// Empty sections are omitted; a run that matched nothing still reports.
func (w *Writer) WriteReport(report *domain.SyncReport) error {
	lines := []string{
		fmt.Sprintf("branches pushed: %s", nameList(report.BranchesPushed)),
	}
	if len(report.BranchesSkipped) > 0 {
		lines = append(lines, fmt.Sprintf("branches skipped: %s", nameList(report.BranchesSkipped)))
	}
	if len(report.BranchesDeleted) > 0 {
		lines = append(lines, fmt.Sprintf("branches deleted: %s", nameList(report.BranchesDeleted)))
	}
	if len(report.TagsPushed) > 0 {
		lines = append(lines, fmt.Sprintf("tags pushed: %s", nameList(report.TagsPushed)))
	}

	_, err := fmt.Fprintln(w.out, strings.Join(lines, "\n"))
	return err
}

func nameList(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
