package fileio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupported  = errors.New("unsupported file")
	ErrUnknownSheet = errors.New("unknown sheet")
	ErrHeaderRow    = errors.New("header row out of range")
)

// Sheet — сырые строки одного листа (AoA), как их отдал парсер.
type Sheet struct {
	Name string
	Rows [][]string
}

type Workbook struct {
	Sheets []Sheet
}

// Table is one sheet resolved against its header row.
type Table struct {
	Sheet   string
	Headers []string
	Rows    []map[string]string
}

// ReadWorkbook — выберет парсер по расширению и прочитает все листы.
func ReadWorkbook(r io.Reader, filename string) (*Workbook, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xlsm":
		return readXLSX(r)
	case ".xls":
		return readXLS(r)
	case ".csv":
		name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		return readCSV(r, name)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filename)
	}
}

// ReadWorkbookBytes is ReadWorkbook over an in-memory upload.
func ReadWorkbookBytes(b []byte, filename string) (*Workbook, error) {
	return ReadWorkbook(bytes.NewReader(b), filename)
}

func (wb *Workbook) Names() []string {
	out := make([]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		out[i] = s.Name
	}
	return out
}

// Table returns the named sheet (empty name = first sheet) with headers taken
// from headerRow (1-based).
func (wb *Workbook) Table(sheet string, headerRow int) (*Table, error) {
	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnknownSheet)
	}
	s := &wb.Sheets[0]
	if sheet != "" {
		s = nil
		for i := range wb.Sheets {
			if wb.Sheets[i].Name == sheet {
				s = &wb.Sheets[i]
				break
			}
		}
		if s == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSheet, sheet)
		}
	}
	if headerRow <= 0 {
		headerRow = 1
	}
	t := &Table{Sheet: s.Name}
	if len(s.Rows) == 0 {
		return t, nil
	}
	if headerRow > len(s.Rows) {
		return nil, fmt.Errorf("%w: row %d, sheet %q has %d rows", ErrHeaderRow, headerRow, s.Name, len(s.Rows))
	}
	t.Headers = pickHeader(s.Rows, headerRow)
	t.Rows = rowsToMaps(s.Rows, t.Headers, headerRow)
	return t, nil
}

// pickHeader — берёт строку заголовков (1-based, в пределах rows) и подставляет
// Column N для пустых. Повторы получают первый свободный суффикс " (2)", " (3)"...
func pickHeader(rows [][]string, headerRow int) []string {
	h := rows[headerRow-1]
	out := make([]string, len(h))
	used := make(map[string]bool, len(h))
	for i, v := range h {
		v = strings.TrimSpace(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		name := v
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s (%d)", v, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// rowsToMaps — конвертирует AoA в []map по заголовкам, пропуская полностью пустые строки.
func rowsToMaps(rows [][]string, headers []string, headerRow int) []map[string]string {
	start := headerRow // первая строка после заголовков
	var out []map[string]string
	for r := start; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c := 0; c < len(headers); c++ {
			var v string
			if c < len(rec) {
				v = rec[c]
			}
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			m[headers[c]] = v
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}

// normalizeCell — убираем NBSP/NNBSP и пробелы по краям.
func normalizeCell(s string) string {
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ").Replace(s)
	return strings.TrimSpace(s)
}
