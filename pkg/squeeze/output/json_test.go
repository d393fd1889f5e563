package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter(t *testing.T) {
	report := sampleReport()
	report.Sources = []string{"/docs"}

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, report))

	var parsed jsonOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	require.Len(t, parsed.Files, 3)
	assert.Equal(t, "/docs/report.pdf", parsed.Files[0].Path)
	assert.InDelta(t, 60.0, parsed.Files[0].Reduction, 0.001)
	assert.Equal(t, "exit status 1", parsed.Files[2].Error)

	assert.Equal(t, 3, parsed.Stats.Targets)
	assert.Equal(t, int64(6*1024*1024), parsed.Stats.Saved)
	assert.Equal(t, []string{"/docs"}, parsed.Meta.Sources)
}

func TestJSONLFormatter(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	require.NoError(t, (&JSONLFormatter{}).Format(&buf, report))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	for _, line := range lines {
		var file jsonFile
		require.NoError(t, json.Unmarshal([]byte(line), &file))
		assert.NotEmpty(t, file.Path)
	}
}

func TestPrettyFormatter(t *testing.T) {
	report := sampleReport()
	report.Verbose = true
	report.Warnings = []string{"notes.txt: not a PDF file"}

	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "/docs/report.pdf")
	assert.Contains(t, out, "already optimal")
	assert.Contains(t, out, "exit status 1")
	assert.Contains(t, out, "saved 6 MiB (50.00%)")
	assert.Contains(t, out, "Warnings:")
}

func TestPrettyFormatter_Interrupted(t *testing.T) {
	report := sampleReport()
	report.Interrupted = true

	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, report))

	assert.Contains(t, buf.String(), "Run interrupted by user")
}
