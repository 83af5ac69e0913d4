package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}

func toBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on", "si", "sí":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// formList: повторяющиеся поля формы как есть; одно поле вида ["a","b"]
// разбирается как JSON-массив. Пустые элементы отбрасываются.
func formList(r *http.Request, name string) []string {
	var vals []string
	if r.MultipartForm != nil {
		vals = r.MultipartForm.Value[name]
	}
	if len(vals) == 0 {
		vals = r.Form[name]
	}
	if len(vals) == 1 && strings.HasPrefix(strings.TrimSpace(vals[0]), "[") {
		var arr []string
		if err := json.Unmarshal([]byte(vals[0]), &arr); err == nil {
			vals = arr
		}
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

type errorBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, log *zerolog.Logger, status int, err error) {
	body := errorBody{Error: err.Error()}
	var ve *ValidationError
	if errors.As(err, &ve) {
		for _, f := range ve.Fields {
			body.Fields = append(body.Fields, f.Field)
		}
	}
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, body)
}
