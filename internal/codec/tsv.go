package codec

import (
	"encoding/csv"

	billy "github.com/go-git/go-billy/v5"
	"github.com/pkg/errors"
)

// TSV return types.
const (
	TSVRows    = "rows"
	TSVColumns = "columns"
	TSVFrame   = "frame"
)

// Frame is a tabular view of a tsv file.
type Frame struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (f *Frame) Len() int { return len(f.Rows) }

// Column returns the values of the named column, or nil.
func (f *Frame) Column(name string) []string {
	idx := -1
	for i, c := range f.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	values := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values
}

// ReadTSV decodes a tab-separated file whose first line is a header.
// By default it returns one map per row; opts.ReturnType selects a
// columnar map ("columns") or a *Frame ("frame").
func ReadTSV(fsys billy.Filesystem, path string, opts Options) (any, error) {
	frame, err := readFrame(fsys, path)
	if err != nil {
		return nil, err
	}

	switch opts.ReturnType {
	case "", TSVRows:
		rows := make([]map[string]string, 0, len(frame.Rows))
		for _, rec := range frame.Rows {
			row := make(map[string]string, len(frame.Columns))
			for i, col := range frame.Columns {
				if i < len(rec) {
					row[col] = rec[i]
				} else {
					row[col] = ""
				}
			}
			rows = append(rows, row)
		}
		return rows, nil
	case TSVColumns:
		cols := make(map[string][]string, len(frame.Columns))
		for _, col := range frame.Columns {
			cols[col] = frame.Column(col)
		}
		return cols, nil
	case TSVFrame:
		return frame, nil
	default:
		return nil, errors.Errorf("unknown tsv return type %q", opts.ReturnType)
	}
}

func readFrame(fsys billy.Filesystem, path string) (*Frame, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Frame{}, nil
	}
	return &Frame{Columns: records[0], Rows: records[1:]}, nil
}
