// Package csvfile reads uploaded budget CSV files into raw rows.
package csvfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read returns the data rows of a CSV file. The first row is the header and
// is dropped; it only fixes the row width. Shorter rows are padded with empty
// cells and longer rows are cut to the header width. Blank lines are skipped.
// A file without a header yields no rows.
func Read(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var width int
	rows := [][]string{}
	headerSeen := false

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read CSV: %w", err)
		}
		if blank(record) {
			continue
		}

		if !headerSeen {
			headerSeen = true
			width = len(record)
			continue
		}
		rows = append(rows, fit(record, width))
	}

	return rows, nil
}

func blank(record []string) bool {
	return len(record) == 1 && strings.TrimSpace(record[0]) == ""
}

func fit(record []string, width int) []string {
	row := make([]string, width)
	copy(row, record)
	return row
}
