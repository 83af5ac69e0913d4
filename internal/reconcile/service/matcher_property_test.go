package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"match-service/internal/reconcile/model"
)

// ============================================================================
// Generators
// ============================================================================

// keyGen generates short tuple keys over a small vocabulary so that
// duplicates and near-matches are common.
func keyGen(arity int) *rapid.Generator[model.Key] {
	words := []string{"acme", "corp", "john", "smith", "mary", "jones", "ltd", "sa", "jon", "smyth"}
	return rapid.Custom(func(t *rapid.T) model.Key {
		k := make(model.Key, arity)
		for i := range k {
			n := rapid.IntRange(1, 3).Draw(t, "words")
			parts := make([]string, n)
			for j := range parts {
				parts[j] = rapid.SampledFrom(words).Draw(t, "word")
			}
			k[i] = strings.Join(parts, " ")
		}
		return k
	})
}

func keySliceGen(arity int) *rapid.Generator[[]model.Key] {
	return rapid.SliceOfN(keyGen(arity), 0, 12)
}

// countByKey tallies how many times each key occurs.
func countByKey(ks []model.Key) map[string]int {
	m := make(map[string]int, len(ks))
	for _, k := range ks {
		m[strings.Join(k, keySep)]++
	}
	return m
}

func sides(recs []model.Record) (left, right []model.Key) {
	for _, r := range recs {
		if r.Left != nil {
			left = append(left, r.Left)
		}
		if r.Right != nil {
			right = append(right, r.Right)
		}
	}
	return left, right
}

// ============================================================================
// Match Property Tests
// ============================================================================

// TestPropertyMatchCoversEveryKeyOnce verifies every input key appears in
// exactly one record on its side.
func TestPropertyMatchCoversEveryKeyOnce(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		arity := rapid.IntRange(1, 3).Draw(t, "arity")
		left := keySliceGen(arity).Draw(t, "left")
		right := keySliceGen(arity).Draw(t, "right")
		threshold := rapid.IntRange(0, 100).Draw(t, "threshold")

		recs, err := Match(left, right, threshold, TokenSortRatio, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		gotLeft, gotRight := sides(recs)
		if len(gotLeft) != len(left) || len(gotRight) != len(right) {
			t.Fatalf("coverage: %d/%d left, %d/%d right", len(gotLeft), len(left), len(gotRight), len(right))
		}
		wantL, gotL := countByKey(left), countByKey(gotLeft)
		wantR, gotR := countByKey(right), countByKey(gotRight)
		for k, n := range wantL {
			if gotL[k] != n {
				t.Fatalf("left key %q appears %d times, want %d", k, gotL[k], n)
			}
		}
		for k, n := range wantR {
			if gotR[k] != n {
				t.Fatalf("right key %q appears %d times, want %d", k, gotR[k], n)
			}
		}
		// left keys keep their order and come first
		for i, k := range left {
			if !recs[i].Left.Equal(k) {
				t.Fatalf("record %d left = %v, want %v", i, recs[i].Left, k)
			}
		}
	})
}

// TestPropertyMatchStatusInvariant verifies matched iff both sides present and
// score >= threshold, and score 0 whenever a side is absent.
func TestPropertyMatchStatusInvariant(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		left := keySliceGen(1).Draw(t, "left")
		right := keySliceGen(1).Draw(t, "right")
		threshold := rapid.IntRange(0, 100).Draw(t, "threshold")

		recs, err := Match(left, right, threshold, TokenSortRatio, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, r := range recs {
			if r.Left == nil && r.Right == nil {
				t.Fatalf("record with both sides absent")
			}
			both := r.Left != nil && r.Right != nil
			if (r.Status == model.StatusMatched) != (both && r.Score >= threshold) {
				t.Fatalf("status %s inconsistent with %+v at threshold %d", r.Status, r, threshold)
			}
			if !both && r.Score != 0 {
				t.Fatalf("one-sided record has score %d", r.Score)
			}
			if r.Score < 0 || r.Score > 100 {
				t.Fatalf("score %d out of range", r.Score)
			}
		}
	})
}

// TestPropertyMatchThresholdMonotonic verifies raising the threshold never
// increases the number of matches.
func TestPropertyMatchThresholdMonotonic(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		left := keySliceGen(2).Draw(t, "left")
		right := keySliceGen(2).Draw(t, "right")
		lo := rapid.IntRange(0, 100).Draw(t, "lo")
		hi := rapid.IntRange(lo, 100).Draw(t, "hi")

		recsLo, err := Match(left, right, lo, TokenSortRatio, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		recsHi, err := Match(left, right, hi, TokenSortRatio, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		mLo, _ := Partition(recsLo)
		mHi, _ := Partition(recsHi)
		if len(mHi) > len(mLo) {
			t.Fatalf("threshold %d matched %d, threshold %d matched %d", hi, len(mHi), lo, len(mLo))
		}
	})
}

// TestPropertyMatchDeterministic verifies identical inputs give identical output.
func TestPropertyMatchDeterministic(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		left := keySliceGen(1).Draw(t, "left")
		right := keySliceGen(1).Draw(t, "right")
		threshold := rapid.IntRange(0, 100).Draw(t, "threshold")

		first, err := Match(left, right, threshold, TokenSortRatio, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := Match(left, right, threshold, TokenSortRatio, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		require.Equal(t, first, second)
	})
}
