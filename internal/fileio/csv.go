package fileio

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readCSV reads CSV as a single-sheet workbook, auto-detecting encoding and
// converting to UTF-8. It supports UTF-8 (with or without BOM), Windows-1251
// and ISO-8859-1 out of the box. Both "," and ";" separators are accepted.
func readCSV(r io.Reader, sheet string) (*Workbook, error) {
	br := bufio.NewReader(r)

	// Peek a bit to detect encoding
	peek, _ := br.Peek(2048)
	cs := "utf-8"
	if len(peek) > 0 {
		if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
			cs = strings.ToLower(det.Charset)
		}
	}

	var dec io.Reader
	switch cs {
	case "windows-1251", "cp1251":
		dec = transform.NewReader(br, charmap.Windows1251.NewDecoder())
	case "iso-8859-1", "windows-1252":
		dec = transform.NewReader(br, charmap.Windows1252.NewDecoder())
	default:
		// assume UTF-8, drop BOM if any
		dec = transform.NewReader(br, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if semicolonSeparated(peek) {
		cr.Comma = ';'
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return &Workbook{Sheets: []Sheet{{Name: sheet, Rows: rows}}}, nil
}

// Excel в европейских локалях сохраняет CSV через ";"
func semicolonSeparated(peek []byte) bool {
	line := string(peek)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return strings.Count(line, ";") > strings.Count(line, ",")
}
