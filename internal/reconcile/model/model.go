package model

import "strings"

// Key — нормализованный ключ сравнения: одна колонка или кортеж из нескольких.
// nil означает отсутствующую сторону в Record.
type Key []string

// String joins the tuple with single spaces, the form scorers compare.
func (k Key) String() string { return strings.Join(k, " ") }

func (k Key) Equal(o Key) bool {
	if len(k) != len(o) {
		return false
	}
	for i := range k {
		if k[i] != o[i] {
			return false
		}
	}
	return true
}

type Status string

const (
	StatusMatched   Status = "matched"
	StatusUnmatched Status = "unmatched"
)

// Record — одна строка результата сопоставления.
type Record struct {
	Left   Key    `json:"left"`  // nil если у строки B нет пары
	Right  Key    `json:"right"` // nil если у строки A нет пары
	Score  int    `json:"score"` // 0..100, 0 при отсутствующей стороне
	Status Status `json:"status"`
}

type Mapping struct {
	Sheet     string   `json:"sheet"`     // лист книги; пусто = первый
	Columns   []string `json:"columns"`   // выбранные колонки, порядок важен
	HeaderRow int      `json:"headerRow"` // строка заголовков (1-based)
}

type Options struct {
	Threshold    int    `json:"threshold"`    // порог схожести 0..100
	Scorer       string `json:"scorer"`       // token_sort, ratio, levenshtein, ...
	Dedupe       bool   `json:"dedupe"`       // убрать повторяющиеся ключи до сопоставления
	StripAccents bool   `json:"stripAccents"` // á → a перед сравнением
}

type Stats struct {
	TotalA   int    `json:"totalA"`
	TotalB   int    `json:"totalB"`
	Matched  int    `json:"matched"`
	PercentA string `json:"percentA"` // matched / totalA
	PercentB string `json:"percentB"` // matched / totalB
}

// Duplicates lists the cleaned values of one column that occur more than once.
type Duplicates struct {
	Side   string   `json:"side"` // "A" | "B"
	Column string   `json:"column"`
	Values []string `json:"values"`
}

type Result struct {
	ID         string       `json:"id,omitempty"`
	Records    []Record     `json:"records"`
	Matched    []Record     `json:"matched"`
	Unmatched  []Record     `json:"unmatched"`
	Duplicates []Duplicates `json:"duplicates"`
	Stats      Stats        `json:"stats"`
	Opts       Options      `json:"opts"`
	MapA       Mapping      `json:"mapA"`
	MapB       Mapping      `json:"mapB"`
}
