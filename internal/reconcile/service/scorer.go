package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"

	"match-service/internal/reconcile/model"
)

const DefaultScorer = "token_sort"

// погрешность float32 из go-edlib после умножения на 100
const floatSlack = 1e-4

// алгоритмы go-edlib, доступные по имени
var edlibScorers = map[string]edlib.Algorithm{
	"levenshtein":   edlib.Levenshtein,
	"damerau":       edlib.DamerauLevenshtein,
	"osa":           edlib.OSADamerauLevenshtein,
	"lcs":           edlib.Lcs,
	"hamming":       edlib.Hamming,
	"jaro":          edlib.Jaro,
	"jaro_winkler":  edlib.JaroWinkler,
	"cosine":        edlib.Cosine,
	"jaccard":       edlib.Jaccard,
	"sorensen_dice": edlib.SorensenDice,
	"qgram":         edlib.Qgram,
}

// ScorerNames lists every name accepted by ScorerByName, sorted.
func ScorerNames() []string {
	names := []string{DefaultScorer, "ratio"}
	for n := range edlibScorers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ScorerByName resolves a scorer; an empty name selects token_sort.
func ScorerByName(name string) (ScoreFunc, error) {
	switch name = strings.ToLower(strings.TrimSpace(name)); name {
	case "", DefaultScorer:
		return TokenSortRatio, nil
	case "ratio":
		return Ratio, nil
	}
	algo, ok := edlibScorers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScorer, name)
	}
	return func(a, b model.Key) (int, error) {
		sa, sb := a.String(), b.String()
		if sa == sb {
			return 100, nil
		}
		sim, err := edlib.StringsSimilarity(sa, sb, algo)
		if err != nil {
			return 0, err
		}
		return toPercent(float64(sim)), nil
	}, nil
}

// TokenSortRatio scores the whole tuple as one string with its tokens sorted,
// so word order inside and across columns does not matter.
func TokenSortRatio(a, b model.Key) (int, error) {
	return indelRatio(tokenSort(a.String()), tokenSort(b.String())), nil
}

// Ratio is the InDel similarity of the joined tuples without token sorting.
func Ratio(a, b model.Key) (int, error) {
	return indelRatio(collapseSpaces(a.String()), collapseSpaces(b.String())), nil
}

// indelRatio: 100 * (1 - indel/(len(a)+len(b))), где indel допускает только
// вставки и удаления (len(a)+len(b)-2*LCS). Дробная часть отбрасывается:
// floor(x) >= порог ровно тогда, когда x >= порог.
func indelRatio(a, b string) int {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la+lb == 0 || a == b {
		return 100
	}
	total := la + lb
	dist := total - 2*edlib.LCS(a, b)
	return (total - dist) * 100 / total
}

// toPercent truncates a [0,1] similarity to a whole percent. go-edlib returns
// float32, so values within floatSlack of the next percent count as reaching it.
func toPercent(sim float64) int {
	if math.IsNaN(sim) || sim <= 0 {
		return 0
	}
	if sim >= 1 {
		return 100
	}
	return min(int(math.Floor(sim*100+floatSlack)), 100)
}
