package service

import (
	"fmt"
	"regexp"
	"strings"

	"match-service/internal/reconcile/model"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// normHeaderKey: нижний регистр, без служебных символов и лишних пробелов.
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWord.ReplaceAllString(s, " ")
	return collapseSpaces(s)
}

// resolveColumns maps the requested column names onto the table headers:
// exact name first, then the normalized form ("Nombre " == "nombre").
func resolveColumns(headers, want []string) ([]string, error) {
	out := make([]string, len(want))
	for i, w := range want {
		found := ""
		for _, h := range headers {
			if h == w {
				found = h
				break
			}
		}
		if found == "" {
			nw := normHeaderKey(w)
			for _, h := range headers {
				if nw != "" && normHeaderKey(h) == nw {
					found = h
					break
				}
			}
		}
		if found == "" {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, w)
		}
		out[i] = found
	}
	return out, nil
}

// buildKeys cleans the selected cells of every row into a Key.
// Rows whose selected cells are all empty produce no key.
func buildKeys(rows []map[string]string, cols []string, opt model.Options) []model.Key {
	keys := make([]model.Key, 0, len(rows))
	for _, rec := range rows {
		k := make(model.Key, len(cols))
		empty := true
		for i, c := range cols {
			k[i] = normalize(rec[c], opt)
			if k[i] != "" {
				empty = false
			}
		}
		if !empty {
			keys = append(keys, k)
		}
	}
	return keys
}
