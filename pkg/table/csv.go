package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrParse is returned for malformed CSV score data.
var ErrParse = errors.New("parse scores")

// ReadCSV decodes a [Table] from CSV. The first record is the header; the
// first field of every record is the student identifier. Empty score fields
// decode as missing.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrParse, err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}

		line, _ := cr.FieldPos(0)

		row := Row{
			Student: strings.TrimSpace(rec[0]),
			Scores:  make([]Score, len(rec)-1),
		}

		for j, field := range rec[1:] {
			field = strings.TrimSpace(field)
			if field == "" {
				row.Scores[j] = Missing()
				continue
			}

			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d, column %q: %w", ErrParse, line, header[j+1], err)
			}

			row.Scores[j] = Value(v)
		}

		rows = append(rows, row)
	}

	return New(header, rows)
}
