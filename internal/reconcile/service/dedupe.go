package service

import (
	"strings"

	"match-service/internal/reconcile/model"
)

// разделитель компонентов кортежа в ключе map; в ячейках не встречается
const keySep = "\x1f"

// dedupeKeys keeps the first occurrence of every key, preserving order.
func dedupeKeys(keys []model.Key) []model.Key {
	seen := make(map[string]struct{}, len(keys))
	out := make([]model.Key, 0, len(keys))
	for _, k := range keys {
		id := strings.Join(k, keySep)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, k)
	}
	return out
}

// findDuplicates returns the cleaned values of one column that occur more
// than once, each reported once in order of first appearance. Empty cells
// are ignored.
func findDuplicates(rows []map[string]string, col string, opt model.Options) []string {
	byValue := make(map[string]int, len(rows))
	order := make([]string, 0)
	for _, rec := range rows {
		v := normalize(rec[col], opt)
		if v == "" {
			continue
		}
		if byValue[v] == 0 {
			order = append(order, v)
		}
		byValue[v]++
	}
	out := make([]string, 0)
	for _, v := range order {
		if byValue[v] > 1 {
			out = append(out, v)
		}
	}
	return out
}
