package report

import (
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"match-service/internal/reconcile/model"
)

// TupleSep joins the columns of a tuple key in a single CSV cell.
const TupleSep = " | "

type csvRecord struct {
	Left   string `csv:"left"`
	Right  string `csv:"right"`
	Score  int    `csv:"similarity"`
	Status string `csv:"status"`
}

// WriteCSV writes the Matches table as CSV.
func WriteCSV(w io.Writer, res model.Result) error {
	rows := make([]*csvRecord, 0, len(res.Records))
	for _, r := range res.Records {
		rows = append(rows, &csvRecord{
			Left:   strings.Join(r.Left, TupleSep),
			Right:  strings.Join(r.Right, TupleSep),
			Score:  r.Score,
			Status: statusLabel(r.Status),
		})
	}
	return gocsv.Marshal(&rows, w)
}
