package tui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nodesweep/deleter"
	"nodesweep/scanner"
)

func TestRenderTable(t *testing.T) {
	items := []*scanner.NodeModuleInfo{
		{Path: "/work/big/node_modules", Size: 2_000_000, LastModifiedAt: time.Now().Add(-time.Hour)},
		{Path: "/work/small/node_modules", Size: 1_000},
		{Path: "/work/odd/node_modules", SizeUnknown: true},
	}

	out := RenderTable(items, 2_001_000)

	assert.Contains(t, out, "/work/big/node_modules")
	assert.Contains(t, out, "2.0 MB")
	assert.Contains(t, out, "1.0 kB")
	// Unknown sizes render as a question mark, not as zero.
	assert.Contains(t, out, "?")
	assert.Contains(t, out, "3 node_modules")
}

func TestDeletionPrinter(t *testing.T) {
	var buf bytes.Buffer
	printer := DeletionPrinter(&buf, 2)

	printer("/a/node_modules", 1, nil)
	printer("/b/node_modules", 2, assert.AnError)

	out := buf.String()
	assert.Contains(t, out, "removed")
	assert.Contains(t, out, "(1/2)")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "(2/2)")
}

func TestPrintDeletionSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintDeletionSummary(&buf, deleter.Summary{
		Removed: 4,
		Failed:  1,
		Failures: []deleter.Failure{
			{Path: "/stuck/node_modules", Error: "busy"},
		},
	}, 123_000)

	out := buf.String()
	assert.Contains(t, out, "removed: 4, failed: 1")
	assert.Contains(t, out, "123 kB")
	assert.Contains(t, out, "/stuck/node_modules")
}
