// Надёжный парсер .xls: фиксируем ширину таблицы сами и читаем все ячейки до неё.
package fileio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	xls "github.com/extrame/xls"
)

// старые выгрузки из Excel для испанской и западной локали
const legacyCharset = "windows-1252"

// вычисляем "реальную" ширину: пробегаем разумное число колонок и ищем непустые
func computeMaxCols(sheet *xls.WorkSheet) int {
	const probeMax = 512
	maxCols := 0

	for i := 0; i <= int(sheet.MaxRow); i++ {
		r := sheet.Row(i)
		if r == nil {
			continue
		}
		for j := 0; j < probeMax; j++ {
			if v := normalizeCell(r.Col(j)); v != "" && j+1 > maxCols {
				maxCols = j + 1
			}
		}
	}
	if maxCols == 0 {
		maxCols = 1
	}
	return maxCols
}

func readXLS(r io.Reader) (*Workbook, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	// кодовая страница влияет только на 8-битные строки BIFF5, BIFF8 хранит UTF-16
	wb, err := xls.OpenReader(bytes.NewReader(b), legacyCharset)
	if err != nil {
		return nil, fmt.Errorf("xls: %w", err)
	}
	if wb == nil {
		return nil, errors.New("xls: failed to open workbook")
	}

	out := &Workbook{}
	for n := 0; n < wb.NumSheets(); n++ {
		sheet := wb.GetSheet(n)
		if sheet == nil {
			continue
		}
		// фиксируем ширину и читаем все строки до неё (НЕ полагаемся на Row.LastCol())
		maxCols := computeMaxCols(sheet)
		rows := make([][]string, 0, int(sheet.MaxRow)+1)
		for i := 0; i <= int(sheet.MaxRow); i++ {
			row := sheet.Row(i)
			cols := make([]string, maxCols)
			if row != nil {
				for j := 0; j < maxCols; j++ {
					cols[j] = normalizeCell(row.Col(j)) // безопасно: пустые -> ""
				}
			}
			rows = append(rows, cols)
		}
		out.Sheets = append(out.Sheets, Sheet{Name: sheet.Name, Rows: rows})
	}
	return out, nil
}
