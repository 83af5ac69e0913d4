package service

import (
	"fmt"

	"match-service/internal/reconcile/model"
)

// Summarize counts matched records against both side totals.
func Summarize(records []model.Record, totalA, totalB int) model.Stats {
	matched := 0
	for _, r := range records {
		if r.Status == model.StatusMatched {
			matched++
		}
	}
	return model.Stats{
		TotalA:   totalA,
		TotalB:   totalB,
		Matched:  matched,
		PercentA: percent(matched, totalA),
		PercentB: percent(matched, totalB),
	}
}

func percent(n, total int) string {
	if total <= 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(n)/float64(total)*100)
}
