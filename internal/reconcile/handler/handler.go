package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"match-service/internal/config"
	"match-service/internal/fileio"
	"match-service/internal/reconcile/model"
	recSvc "match-service/internal/reconcile/service"
	"match-service/internal/report"
	"match-service/internal/store"
)

const multipartMemory = 32 << 20

var errBadRequest = errors.New("bad request")

// Sheets lists the sheets of an uploaded workbook and the headers of one of
// them, so a client can offer sheet and column pickers.
func Sheets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context())

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			writeError(w, log, formStatus(err), fmt.Errorf("bad multipart form: %w", err))
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeError(w, log, http.StatusBadRequest, fmt.Errorf("missing file: %w", err))
			return
		}
		defer f.Close()

		wb, err := fileio.ReadWorkbook(f, hdr.Filename)
		if err != nil {
			writeError(w, log, http.StatusBadRequest, fmt.Errorf("failed to read %s: %w", hdr.Filename, err))
			return
		}
		t, err := wb.Table(r.FormValue("sheet"), atoi(r.FormValue("header_row"), 1))
		if err != nil {
			writeError(w, log, http.StatusBadRequest, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"file":    hdr.Filename,
			"sheets":  wb.Names(),
			"sheet":   t.Sheet,
			"headers": nonNil(t.Headers),
			"rows":    len(t.Rows),
		})
	}
}

// Match runs the fuzzy row matching over two uploaded workbooks, stores the
// result and returns it as JSON.
func Match(cfg config.Config, st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := zerolog.Ctx(r.Context())

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			writeError(w, log, formStatus(err), fmt.Errorf("bad multipart form: %w", err))
			return
		}

		p, err := bindMatchParams(r, cfg)
		if err != nil {
			writeError(w, log, http.StatusBadRequest, err)
			return
		}
		if err := p.validate(); err != nil {
			writeError(w, log, http.StatusBadRequest, err)
			return
		}

		// Читаем обе таблицы параллельно (XLSX/XLS/CSV внутри fileio)
		var tA, tB *fileio.Table
		var g errgroup.Group
		g.Go(func() (err error) {
			tA, err = readUpload(r, "fileA", p.ASheet, p.AHeaderRow)
			return err
		})
		g.Go(func() (err error) {
			tB, err = readUpload(r, "fileB", p.BSheet, p.BHeaderRow)
			return err
		})
		if err := g.Wait(); err != nil {
			writeError(w, log, http.StatusBadRequest, err)
			return
		}

		ma := model.Mapping{Sheet: tA.Sheet, Columns: p.AColumns, HeaderRow: p.AHeaderRow}
		mb := model.Mapping{Sheet: tB.Sheet, Columns: p.BColumns, HeaderRow: p.BHeaderRow}
		opt := model.Options{
			Threshold:    p.Threshold,
			Scorer:       p.Scorer,
			Dedupe:       p.Dedupe,
			StripAccents: p.StripAccents,
		}

		// прогресс в лог не чаще раза в секунду
		every := rate.Sometimes{Interval: time.Second}
		progress := func(done, total int) {
			every.Do(func() {
				log.Debug().Int("done", done).Int("total", total).Msg("match progress")
			})
		}

		res, err := recSvc.Run(tA, tB, ma, mb, opt, progress)
		if err != nil {
			writeError(w, log, runStatus(err), err)
			return
		}

		id, err := st.Put(res)
		if err != nil {
			writeError(w, log, http.StatusInternalServerError, err)
			return
		}
		res.ID = id

		writeJSON(w, http.StatusOK, res)

		log.Info().
			Str("id", id).
			Int("rowsA", len(tA.Rows)).
			Int("rowsB", len(tB.Rows)).
			Int("matched", res.Stats.Matched).
			Int("unmatched", len(res.Unmatched)).
			Dur("elapsed", time.Since(start)).
			Msg("match done")
	}
}

func GetReport(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context())
		res, err := st.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, log, storeStatus(err), err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// DownloadReport exports a stored result as xlsx (default) or csv.
func DownloadReport(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context())
		id := chi.URLParam(r, "id")
		res, err := st.Get(id)
		if err != nil {
			writeError(w, log, storeStatus(err), err)
			return
		}

		var (
			buf   bytes.Buffer
			ctype string
		)
		format := strings.ToLower(r.URL.Query().Get("format"))
		switch format {
		case "", "xlsx":
			format = "xlsx"
			ctype = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
			err = report.WriteXLSX(&buf, res)
		case "csv":
			ctype = "text/csv; charset=utf-8"
			err = report.WriteCSV(&buf, res)
		default:
			writeError(w, log, http.StatusBadRequest, fmt.Errorf("%w: unknown format %q", errBadRequest, format))
			return
		}
		if err != nil {
			writeError(w, log, http.StatusInternalServerError, err)
			return
		}

		w.Header().Set("Content-Type", ctype)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="match-report-%s.%s"`, id, format))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		_, _ = buf.WriteTo(w)
	}
}

func DeleteReport(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context())
		if err := st.Delete(chi.URLParam(r, "id")); err != nil {
			writeError(w, log, storeStatus(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func bindMatchParams(r *http.Request, cfg config.Config) (*matchParams, error) {
	p := &matchParams{
		ASheet:       strings.TrimSpace(r.FormValue("a_sheet")),
		BSheet:       strings.TrimSpace(r.FormValue("b_sheet")),
		AColumns:     formList(r, "a_columns"),
		BColumns:     formList(r, "b_columns"),
		AHeaderRow:   atoi(r.FormValue("a_header_row"), 1),
		BHeaderRow:   atoi(r.FormValue("b_header_row"), 1),
		Threshold:    cfg.Match.Threshold,
		Scorer:       cfg.Match.Scorer,
		Dedupe:       toBool(r.FormValue("dedupe"), cfg.Match.Dedupe),
		StripAccents: toBool(r.FormValue("strip_accents"), false),
	}
	if s := strings.TrimSpace(r.FormValue("scorer")); s != "" {
		p.Scorer = s
	}
	// мусор в поле порога: ошибка, а не молчаливый дефолт
	if s := strings.TrimSpace(r.FormValue("threshold")); s != "" {
		th, err := strconv.Atoi(s)
		if err != nil {
			return nil, &ValidationError{Fields: []FieldError{{
				Field:   "threshold",
				Tag:     "integer",
				Message: fmt.Sprintf("threshold must be an integer, got %q", s),
			}}}
		}
		p.Threshold = th
	}
	return p, nil
}

func readUpload(r *http.Request, field, sheet string, headerRow int) (*fileio.Table, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %s: %w", field, err)
	}
	defer f.Close()

	wb, err := fileio.ReadWorkbook(f, hdr.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s (%s): %w", field, hdr.Filename, err)
	}
	t, err := wb.Table(sheet, headerRow)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

func formStatus(err error) int {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func runStatus(err error) int {
	switch {
	case errors.Is(err, recSvc.ErrScorer), errors.Is(err, recSvc.ErrScoreOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, recSvc.ErrInvalidThreshold),
		errors.Is(err, recSvc.ErrArityMismatch),
		errors.Is(err, recSvc.ErrNoColumns),
		errors.Is(err, recSvc.ErrUnknownColumn),
		errors.Is(err, recSvc.ErrUnknownScorer):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func storeStatus(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
