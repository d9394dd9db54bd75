package sheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, sheets map[string][][]any, order ...string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadFirstSheet(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		"Todos": {
			{"title", "note"},
			{"A", "x"},
			{"", "only note"},
			{"  B  "},
		},
		"Other": {
			{"title"},
			{"ignored"},
		},
	}, "Todos", "Other")

	recs, err := ReadFirstSheet(buf)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, Record{"title": "A", "note": "x"}, recs[0])
	_, ok := recs[1].Get("title")
	assert.False(t, ok, "empty cell should be absent")
	assert.Equal(t, "  B  ", recs[2]["title"])
}

func TestReadFirstSheet_NotAWorkbook(t *testing.T) {
	_, err := ReadFirstSheet(strings.NewReader("title\nA\n"))
	assert.Error(t, err)
}

func TestRecords_SkipsBlankRows(t *testing.T) {
	recs := Records([][]string{
		{},
		{"title"},
		{""},
		{"A"},
		{},
		{"B"},
	})
	assert.Equal(t, []Record{{"title": "A"}, {"title": "B"}}, recs)
}

func TestRecords_NoHeader(t *testing.T) {
	assert.Empty(t, Records(nil))
}

func TestHeaderKeys(t *testing.T) {
	got := headerKeys([]string{"title", "", "title", "", "title"})
	assert.Equal(t, []string{"title", "__EMPTY", "title_1", "__EMPTY_1", "title_2"}, got)
}

func TestRecords_CellsBeyondHeaderDropped(t *testing.T) {
	recs := Records([][]string{
		{"title"},
		{"A", "stray"},
	})
	assert.Equal(t, []Record{{"title": "A"}}, recs)
}
