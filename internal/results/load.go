package results

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gwlsn/aqreport/internal/logger"
)

// Load reads a delimited results table from path.
//
// The delimiter is a comma unless the header line contains tabs and no
// commas. Recognized columns are coerced to float64; values that fail
// coercion become Absent. Missing recognized columns are tolerated and read
// as Absent for every row.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fileError(path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fileError(path, err)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Path = path
	return t, nil
}

// Parse reads a results table from raw bytes. See Load.
func Parse(data []byte) (*Table, error) {
	delim := sniffDelimiter(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file (no header row)", ErrFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrFormat, err)
	}

	index := make(map[string]int, len(Columns))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	t := &Table{columns: make(map[string]bool, len(Columns))}
	for _, c := range Columns {
		if _, ok := index[c]; ok {
			t.columns[c] = true
		}
	}

	logger.Debug("Parsing results table",
		"delimiter", string(delim),
		"columns", len(header),
		"recognized", len(t.columns))

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
				ErrFormat, line, len(record), len(header))
		}
		t.Rows = append(t.Rows, parseRow(record, index))
	}

	return t, nil
}

func parseRow(record []string, index map[string]int) Row {
	field := func(name string) (string, bool) {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return "", false
		}
		return record[i], true
	}
	num := func(name string) float64 {
		s, ok := field(name)
		if !ok {
			return Absent
		}
		return coerce(s)
	}

	image, _ := field(ColImage)
	return Row{
		Image:       strings.TrimSpace(image),
		Distance:    num(ColDistance),
		AQScale:     num(ColAQScale),
		AQMean:      num(ColAQMean),
		FileSize:    num(ColFileSize),
		BPP:         num(ColBPP),
		DSSIM:       num(ColDSSIM),
		SSIMULACRA2: num(ColSSIMULACRA2),
	}
}

// coerce parses a numeric cell, returning Absent for anything unparseable.
func coerce(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return Absent
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Absent
	}
	return v
}

// sniffDelimiter picks tab for tab-separated headers, comma otherwise.
func sniffDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	if bytes.IndexByte(header, '\t') >= 0 && bytes.IndexByte(header, ',') < 0 {
		return '\t'
	}
	return ','
}
