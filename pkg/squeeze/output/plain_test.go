package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainFormatter_Summary(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "3 files: 1 optimized, 1 no-gain, 0 skipped, 1 failed")
	assert.Contains(t, out, "12 MiB -> 6 MiB, saved 6 MiB (50.00%)")
	assert.NotContains(t, out, "/docs/report.pdf", "per-file lines need verbose")
}

func TestPlainFormatter_Verbose(t *testing.T) {
	report := sampleReport()
	report.Verbose = true

	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "BEFORE")
	assert.Contains(t, out, "/docs/report.pdf")
	assert.Contains(t, out, "-60.00%")
	assert.Contains(t, out, "failed")
}

func TestPlainFormatter_Warnings(t *testing.T) {
	report := sampleReport()
	report.Warnings = []string{"notes.txt: not a PDF file"}

	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, report))

	assert.Contains(t, buf.String(), "warning: notes.txt: not a PDF file")
}

func TestPlainFormatter_DryRun(t *testing.T) {
	report := sampleReport()
	report.DryRun = true

	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, report))

	assert.Contains(t, buf.String(), "dry run: no files were modified")
}
