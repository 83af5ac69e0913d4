package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"match-service/internal/reconcile/model"
)

func TestSummarize(t *testing.T) {
	recs := []model.Record{
		{Left: model.Key{"a"}, Right: model.Key{"a"}, Score: 100, Status: model.StatusMatched},
		{Left: model.Key{"b"}, Status: model.StatusUnmatched},
		{Left: model.Key{"c"}, Status: model.StatusUnmatched},
		{Right: model.Key{"d"}, Status: model.StatusUnmatched},
	}

	assert.Equal(t, model.Stats{
		TotalA:   3,
		TotalB:   2,
		Matched:  1,
		PercentA: "33.33%",
		PercentB: "50.00%",
	}, Summarize(recs, 3, 2))
}

func TestSummarize_ZeroTotals(t *testing.T) {
	got := Summarize(nil, 0, 0)
	assert.Equal(t, "0.00%", got.PercentA)
	assert.Equal(t, "0.00%", got.PercentB)
	assert.Equal(t, 0, got.Matched)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "100.00%", percent(4, 4))
	assert.Equal(t, "66.67%", percent(2, 3))
	assert.Equal(t, "0.00%", percent(5, 0))
}
