package service

import (
	"fmt"

	"match-service/internal/fileio"
	"match-service/internal/reconcile/model"
)

// Run — основная сверка: очистка → дубли → (опц.) дедупликация → Match →
// разбиение на matched/unmatched → статистика.
func Run(a, b *fileio.Table, ma, mb model.Mapping, opt model.Options, progress ProgressFunc) (model.Result, error) {
	if len(ma.Columns) == 0 || len(mb.Columns) == 0 {
		return model.Result{}, ErrNoColumns
	}
	if len(ma.Columns) != len(mb.Columns) {
		return model.Result{}, fmt.Errorf("%w: %d vs %d", ErrArityMismatch, len(ma.Columns), len(mb.Columns))
	}
	if opt.Threshold < 0 || opt.Threshold > 100 {
		return model.Result{}, fmt.Errorf("%w: %d", ErrInvalidThreshold, opt.Threshold)
	}
	score, err := ScorerByName(opt.Scorer)
	if err != nil {
		return model.Result{}, err
	}

	colsA, err := resolveColumns(a.Headers, ma.Columns)
	if err != nil {
		return model.Result{}, fmt.Errorf("A: %w", err)
	}
	colsB, err := resolveColumns(b.Headers, mb.Columns)
	if err != nil {
		return model.Result{}, fmt.Errorf("B: %w", err)
	}

	// 1) Ключи
	left := buildKeys(a.Rows, colsA, opt)
	right := buildKeys(b.Rows, colsB, opt)

	// 2) Дубли по каждой колонке, независимо от дедупликации
	dups := make([]model.Duplicates, 0, len(colsA)+len(colsB))
	for i := range colsA {
		dups = append(dups,
			model.Duplicates{Side: "A", Column: colsA[i], Values: findDuplicates(a.Rows, colsA[i], opt)},
			model.Duplicates{Side: "B", Column: colsB[i], Values: findDuplicates(b.Rows, colsB[i], opt)},
		)
	}

	// 3) Дедупликация (явный этап)
	if opt.Dedupe {
		left = dedupeKeys(left)
		right = dedupeKeys(right)
	}

	// 4) Сопоставление
	records, err := Match(left, right, opt.Threshold, score, progress)
	if err != nil {
		return model.Result{}, err
	}
	matched, unmatched := Partition(records)

	ma.Columns, mb.Columns = colsA, colsB
	return model.Result{
		Records:    records,
		Matched:    matched,
		Unmatched:  unmatched,
		Duplicates: dups,
		Stats:      Summarize(records, len(left), len(right)),
		Opts:       opt,
		MapA:       ma,
		MapB:       mb,
	}, nil
}
