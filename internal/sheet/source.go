package sheet

import (
	"context"
	"strings"
)

// Source yields the current inventory rows.
type Source interface {
	FetchRows(ctx context.Context) ([]Row, error)
}

// StaticSource serves a fixed row set. Used for tests and local fixtures.
type StaticSource []Row

func (s StaticSource) FetchRows(context.Context) ([]Row, error) {
	return s, nil
}

// toRows maps a header row plus data rows into Rows, skipping rows whose
// cells are all blank.
func toRows(table [][]string) []Row {
	if len(table) == 0 {
		return nil
	}

	header := make([]string, len(table[0]))
	for i, h := range table[0] {
		header[i] = NormalizeHeader(h)
	}

	rows := make([]Row, 0, len(table)-1)
	for _, cols := range table[1:] {
		if blank(cols) {
			continue
		}
		row := make(Row, len(header))
		for i, h := range header {
			var v string
			if i < len(cols) {
				v = cols[i]
			}
			row[h] = strings.TrimSpace(v)
		}
		rows = append(rows, row)
	}

	return rows
}

func blank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
