package service

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"match-service/internal/reconcile/model"
)

// === normalize — конвейер очистки значения ячейки ===
func normalize(s string, opt model.Options) string {
	if s == "" {
		return ""
	}
	out := s

	// 1) Диакритика: "José Núñez" → "Jose Nunez"
	if opt.StripAccents {
		out = stripAccents(out)
	}

	// 2) Регистр
	out = strings.ToLower(out)

	// 3) Обрезка краёв и схлопывание пробелов (включая NBSP и табы)
	return collapseSpaces(out)
}

// ===== helpers =====

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Лексикографическая сортировка токенов
func tokenSort(s string) string {
	f := strings.Fields(s)
	sort.Strings(f)
	return strings.Join(f, " ")
}

// Схлопывание пробелов
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
