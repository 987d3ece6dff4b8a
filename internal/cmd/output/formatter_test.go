package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mediathek/internal/cmd/table"
	"github.com/agentstation/mediathek/pkg/errors"
)

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"table", "JSON", "yaml", "wide", ""} {
		_, err := ParseFormat(in)
		assert.NoError(t, err, in)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestDetectFormatPrefersExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	data := table.ValuesToTableData("Channel", []string{"ARD", "ZDF"})

	require.NoError(t, Print(&buf, FormatTable, data, []string{"ARD", "ZDF"}))
	out := buf.String()
	assert.Contains(t, out, "ARD")
	assert.Contains(t, out, "ZDF")
}

func TestPrintStructured(t *testing.T) {
	rows := []table.ShowRow{{ID: 3, Channel: "ARD", Title: "Tagesschau", Time: "20:00:00"}}
	data := table.ShowsToTableData(rows, false)

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatJSON, data, rows))
	assert.JSONEq(t, `[{"id":3,"channel":"ARD","topic":"","title":"Tagesschau","time":"20:00:00","duration":"","url":""}]`, buf.String())

	buf.Reset()
	require.NoError(t, Print(&buf, FormatYAML, data, rows))
	assert.Contains(t, buf.String(), "title: Tagesschau")
}

func TestTableFormatterReflectsStructs(t *testing.T) {
	type result struct {
		Kind      string `json:"kind"`
		UpdatedOn string `json:"updated_on"`
	}

	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, result{Kind: "full", UpdatedOn: "today"}))
	assert.Contains(t, buf.String(), "Updated On")
	assert.Contains(t, buf.String(), "full")
}
