package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	excelize "github.com/xuri/excelize/v2"

	"match-service/internal/reconcile/model"
)

const (
	SheetMatches    = "Matches"
	SheetMatched    = "Matched"
	SheetUnmatched  = "Unmatched"
	SheetStatistics = "Statistics"

	maxSheetName = 31
	maxColWidth  = 60
)

var sheetNameCleaner = strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")")

// WriteXLSX writes the full report workbook: all records, the matched and
// unmatched subsets, one sheet per duplicate list and the statistics table.
func WriteXLSX(w io.Writer, res model.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	b := &book{f: f, used: map[string]bool{}}
	header := recordHeader(res)

	if err := b.sheet(SheetMatches, header, recordRows(res, res.Records)); err != nil {
		return err
	}
	if err := b.sheet(SheetMatched, header, recordRows(res, res.Matched)); err != nil {
		return err
	}
	if err := b.sheet(SheetUnmatched, header, recordRows(res, res.Unmatched)); err != nil {
		return err
	}
	for _, d := range res.Duplicates {
		rows := make([][]any, len(d.Values))
		for i, v := range d.Values {
			rows[i] = []any{v}
		}
		name := fmt.Sprintf("Duplicates %s %s", d.Side, d.Column)
		if err := b.sheet(name, []any{d.Column}, rows); err != nil {
			return err
		}
	}
	if err := b.sheet(SheetStatistics, []any{"Metric", "A", "B"}, statsRows(res.Stats)); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

type book struct {
	f     *excelize.File
	used  map[string]bool
	first bool
}

// sheet добавляет лист: шапка + строки, ширина колонок по содержимому.
func (b *book) sheet(name string, header []any, rows [][]any) error {
	name = b.uniqueName(name)
	if !b.first {
		// у новой книги уже есть Sheet1, переименуем его
		if err := b.f.SetSheetName(b.f.GetSheetName(0), name); err != nil {
			return err
		}
		b.first = true
	} else if _, err := b.f.NewSheet(name); err != nil {
		return err
	}

	widths := make([]int, len(header))
	all := append([][]any{header}, rows...)
	for i := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := all[i]
		if err := b.f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
		for c, v := range row {
			if c < len(widths) && v != nil {
				widths[c] = max(widths[c], utf8.RuneCountInString(fmt.Sprint(v)))
			}
		}
	}
	for c, wdt := range widths {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := b.f.SetColWidth(name, col, col, float64(min(wdt+2, maxColWidth))); err != nil {
			return err
		}
	}
	return nil
}

// uniqueName приводит имя к правилам Excel: ≤31 символ, без : \ / ? * [ ].
func (b *book) uniqueName(name string) string {
	name = strings.TrimSpace(sheetNameCleaner.Replace(name))
	if name == "" {
		name = "Sheet"
	}
	base := truncate(name, maxSheetName)
	name = base
	for n := 2; b.used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	b.used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func recordHeader(res model.Result) []any {
	h := make([]any, 0, len(res.MapA.Columns)+len(res.MapB.Columns)+2)
	for _, c := range res.MapA.Columns {
		h = append(h, "A: "+c)
	}
	for _, c := range res.MapB.Columns {
		h = append(h, "B: "+c)
	}
	return append(h, "Similarity (%)", "Status")
}

func recordRows(res model.Result, recs []model.Record) [][]any {
	na, nb := len(res.MapA.Columns), len(res.MapB.Columns)
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		row := make([]any, 0, na+nb+2)
		row = appendKey(row, r.Left, na)
		row = appendKey(row, r.Right, nb)
		rows = append(rows, append(row, r.Score, statusLabel(r.Status)))
	}
	return rows
}

// отсутствующая сторона: пустые ячейки
func appendKey(row []any, k model.Key, n int) []any {
	for i := 0; i < n; i++ {
		if i < len(k) {
			row = append(row, k[i])
		} else {
			row = append(row, nil)
		}
	}
	return row
}

func statsRows(s model.Stats) [][]any {
	return [][]any{
		{"Total records", s.TotalA, s.TotalB},
		{"Matches", s.Matched, s.Matched},
		{"Match rate", s.PercentA, s.PercentB},
	}
}

func statusLabel(s model.Status) string {
	if s == model.StatusMatched {
		return "Matched"
	}
	return "Unmatched"
}
