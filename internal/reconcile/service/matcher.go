package service

import (
	"fmt"

	"match-service/internal/reconcile/model"
)

// ScoreFunc returns the similarity of two keys in [0,100].
type ScoreFunc func(a, b model.Key) (int, error)

// ProgressFunc is called once per processed left key.
type ProgressFunc func(done, total int)

// Match greedily pairs every left key with the best still available right key.
//
// Candidates are scored in the current order of the available set and the
// first maximum wins ties. A candidate is consumed only when its score reaches
// threshold; otherwise the left key is emitted unmatched and the candidate
// stays available. Right keys left over at the end are emitted unmatched in
// order. A scorer error aborts the whole call.
func Match(left, right []model.Key, threshold int, score ScoreFunc, progress ProgressFunc) ([]model.Record, error) {
	if threshold < 0 || threshold > 100 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreshold, threshold)
	}
	if score == nil {
		return nil, ErrNilScorer
	}

	// собственная копия B: вызывающий код не должен видеть удаления
	available := make([]model.Key, len(right))
	copy(available, right)

	out := make([]model.Record, 0, len(left)+len(right))
	total := len(left)

	for i, k := range left {
		rec := model.Record{Left: k, Status: model.StatusUnmatched}

		if len(available) > 0 {
			bestIdx, best := -1, -1
			for j, c := range available {
				s, err := score(k, c)
				if err != nil {
					return nil, fmt.Errorf("%w: %q vs %q: %w", ErrScorer, k.String(), c.String(), err)
				}
				if s < 0 || s > 100 {
					return nil, fmt.Errorf("%w: %q vs %q scored %d", ErrScoreOutOfRange, k.String(), c.String(), s)
				}
				if s > best {
					bestIdx, best = j, s
				}
			}
			if best >= threshold {
				rec.Right = available[bestIdx]
				rec.Score = best
				rec.Status = model.StatusMatched
				available = append(available[:bestIdx], available[bestIdx+1:]...)
			}
		}

		out = append(out, rec)
		if progress != nil {
			progress(i+1, total)
		}
	}

	for _, c := range available {
		out = append(out, model.Record{Right: c, Status: model.StatusUnmatched})
	}
	return out, nil
}

// Partition splits records by status, keeping their relative order.
func Partition(records []model.Record) (matched, unmatched []model.Record) {
	matched = make([]model.Record, 0, len(records))
	unmatched = make([]model.Record, 0)
	for _, r := range records {
		if r.Status == model.StatusMatched {
			matched = append(matched, r)
		} else {
			unmatched = append(unmatched, r)
		}
	}
	return matched, unmatched
}
