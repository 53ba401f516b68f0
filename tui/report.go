package tui

import (
	"encoding/json"
	"io"
	"time"

	"nodesweep/deleter"
	"nodesweep/scanner"
)

// ReportEntry is one node_modules directory in the machine-readable report.
type ReportEntry struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"sizeBytes"`
	// SizeUnknown marks entries whose size computation failed; their
	// sizeBytes is 0 and totalBytes understates accordingly.
	SizeUnknown bool `json:"sizeUnknown,omitempty"`
}

// DeletionReport is attached when a deletion batch ran.
type DeletionReport struct {
	RemovedCount int               `json:"removedCount"`
	FailedCount  int               `json:"failedCount"`
	Failures     []deleter.Failure `json:"failures,omitempty"`
}

// Report is the full machine-readable output of a run.
type Report struct {
	Root       string          `json:"root"`
	Results    []ReportEntry   `json:"results"`
	TotalBytes int64           `json:"totalBytes"`
	Count      int             `json:"count"`
	ElapsedMS  int64           `json:"elapsedMs"`
	Deletion   *DeletionReport `json:"deletion,omitempty"`
}

// NewReport builds a Report from sorted scan results.
func NewReport(root string, items []*scanner.NodeModuleInfo, totalBytes int64, elapsed time.Duration) *Report {
	entries := make([]ReportEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, ReportEntry{
			Path:        item.Path,
			SizeBytes:   item.Size,
			SizeUnknown: item.SizeUnknown,
		})
	}
	return &Report{
		Root:       root,
		Results:    entries,
		TotalBytes: totalBytes,
		Count:      len(entries),
		ElapsedMS:  elapsed.Milliseconds(),
	}
}

// AttachDeletion records a deletion summary on the report.
func (r *Report) AttachDeletion(sum deleter.Summary) {
	r.Deletion = &DeletionReport{
		RemovedCount: sum.Removed,
		FailedCount:  sum.Failed,
		Failures:     sum.Failures,
	}
}

// Write emits the report as indented JSON.
func (r *Report) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
