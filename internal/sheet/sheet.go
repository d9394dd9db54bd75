// Package sheet decodes uploaded spreadsheet workbooks into header-keyed rows.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned for a workbook without any sheet.
var ErrNoSheets = errors.New("workbook has no sheets")

// Record is one data row keyed by header. Empty cells are absent.
type Record map[string]string

// Get returns the value for key and whether the cell was present.
func (r Record) Get(key string) (string, bool) {
	v, ok := r[key]
	return v, ok
}

// ReadFirstSheet decodes r as an xlsx workbook and returns the rows of the
// first sheet in workbook order. The first non-blank row is the header.
func ReadFirstSheet(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, ErrNoSheets
	}
	rows, err := f.GetRows(names[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", names[0], err)
	}
	return Records(rows), nil
}

// Records converts raw rows into records. Blank rows are skipped.
func Records(rows [][]string) []Record {
	var header []string
	out := []Record{}
	for _, row := range rows {
		if blank(row) {
			continue
		}
		if header == nil {
			header = headerKeys(row)
			continue
		}
		rec := Record{}
		for i, cell := range row {
			if i >= len(header) || cell == "" {
				continue
			}
			rec[header[i]] = cell
		}
		out = append(out, rec)
	}
	return out
}

// headerKeys names blank header cells __EMPTY, __EMPTY_1, ... and suffixes
// repeated names with _1, _2, ...
func headerKeys(row []string) []string {
	keys := make([]string, len(row))
	used := make(map[string]bool, len(row))
	for i, name := range row {
		if name == "" {
			name = "__EMPTY"
		}
		key := name
		for n := 1; used[key]; n++ {
			key = name + "_" + strconv.Itoa(n)
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}

func blank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
