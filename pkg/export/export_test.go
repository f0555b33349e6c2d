package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Title:   "Attendance Class 5-A (2026-03-01 to 2026-03-31)",
		Headers: []string{"Roll", "Name", "Percent"},
		Rows: [][]string{
			{"1", "Aarav Shah", "66.7"},
			{"2", "Bianca Cruz", "50.0"},
		},
	}
}

func TestCSVRender(t *testing.T) {
	content, err := NewCSVExporter().Render(sampleTable())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Roll,Name,Percent", lines[0])
	assert.Equal(t, "1,Aarav Shah,66.7", lines[1])
}

func TestCSVRenderRejectsRaggedRows(t *testing.T) {
	table := sampleTable()
	table.Rows = append(table.Rows, []string{"3", "too short"})

	_, err := NewCSVExporter().Render(table)
	assert.Error(t, err)
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Table{})
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	content, err := NewPDFExporter().Render(sampleTable())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "%PDF"))
}

func TestPDFRenderRejectsRaggedRows(t *testing.T) {
	table := sampleTable()
	table.Rows = append(table.Rows, []string{"mismatch"})

	_, err := NewPDFExporter().Render(table)
	assert.Error(t, err)
}
