package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"

	"match-service/internal/reconcile/model"
)

func sampleResult() model.Result {
	recs := []model.Record{
		{Left: model.Key{"john", "smith"}, Right: model.Key{"smith", "john"}, Score: 100, Status: model.StatusMatched},
		{Left: model.Key{"mary", "jones"}, Status: model.StatusUnmatched},
		{Right: model.Key{"ann", "lee"}, Status: model.StatusUnmatched},
	}
	return model.Result{
		Records:   recs,
		Matched:   recs[:1],
		Unmatched: recs[1:],
		Duplicates: []model.Duplicates{
			{Side: "A", Column: "First", Values: []string{"john"}},
			{Side: "B", Column: "Given", Values: nil},
		},
		Stats: model.Stats{TotalA: 2, TotalB: 2, Matched: 1, PercentA: "50.00%", PercentB: "50.00%"},
		MapA:  model.Mapping{Sheet: "A", Columns: []string{"First", "Last"}, HeaderRow: 1},
		MapB:  model.Mapping{Sheet: "B", Columns: []string{"Given", "Family"}, HeaderRow: 1},
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleResult()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"Matches", "Matched", "Unmatched",
		"Duplicates A First", "Duplicates B Given",
		"Statistics",
	}, f.GetSheetList())

	rows, err := f.GetRows(SheetMatches)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"A: First", "A: Last", "B: Given", "B: Family", "Similarity (%)", "Status"}, rows[0])
	assert.Equal(t, []string{"john", "smith", "smith", "john", "100", "Matched"}, rows[1])
	assert.Equal(t, []string{"mary", "jones", "", "", "0", "Unmatched"}, rows[2])
	assert.Equal(t, []string{"", "", "ann", "lee", "0", "Unmatched"}, rows[3])

	rows, err = f.GetRows(SheetMatched)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = f.GetRows("Duplicates A First")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"First"}, {"john"}}, rows)

	rows, err = f.GetRows(SheetStatistics)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Metric", "A", "B"},
		{"Total records", "2", "2"},
		{"Matches", "1", "1"},
		{"Match rate", "50.00%", "50.00%"},
	}, rows)
}

func TestUniqueName(t *testing.T) {
	b := &book{used: map[string]bool{}}

	assert.Equal(t, "Matches", b.uniqueName("Matches"))
	assert.Equal(t, "matches (2)", b.uniqueName("matches"))
	assert.Equal(t, "Duplicates A a b (c)", b.uniqueName("Duplicates A a/b [c]"))
	assert.Equal(t, "Sheet", b.uniqueName(" ? "))

	long := "Duplicates B " + strings.Repeat("x", 40)
	first := b.uniqueName(long)
	second := b.uniqueName(long)
	assert.Len(t, []rune(first), maxSheetName)
	assert.Len(t, []rune(second), maxSheetName)
	assert.True(t, strings.HasSuffix(second, " (2)"))
	assert.NotEqual(t, first, second)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"left,right,similarity,status",
		"john | smith,smith | john,100,Matched",
		"mary | jones,,0,Unmatched",
		",ann | lee,0,Unmatched",
	}, lines)
}
