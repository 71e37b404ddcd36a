// Package server exposes the transcription tools over HTTP. Each endpoint
// takes an uploaded file as the request body and answers with the converted
// download.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/transcribe-cli/internal/dedupe"
	"github.com/sells-group/transcribe-cli/internal/marc"
	"github.com/sells-group/transcribe-cli/internal/records"
	"github.com/sells-group/transcribe-cli/internal/splitter"
	"github.com/sells-group/transcribe-cli/internal/textnorm"
	"github.com/sells-group/transcribe-cli/internal/xhtml"
)

// Default file names offered for download.
const (
	DedupeFilename = "cleaned-zooniverse-data.csv"
	SplitFilename  = "split_files.zip"
	XHTMLFilename  = "pages.csv"
	MARCFilename   = "record.xml"
)

// Config holds the router settings.
type Config struct {
	MaxUploadBytes int64
	RatePerSec     float64 // <= 0 disables rate limiting
	Burst          int
	AllowedOrigins []string

	Columns        records.Columns
	Charset        string
	ExtraFragments []string
	Seed           uint64 // 0 seeds from the clock per request
	PadWidth       int
	MARC           marc.Options
}

type handler struct {
	cfg        Config
	normalizer *textnorm.Normalizer
}

// NewRouter builds the HTTP route tree.
func NewRouter(cfg Config) http.Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	if cfg.PadWidth < 1 {
		cfg.PadWidth = 4
	}
	h := &handler{cfg: cfg, normalizer: textnorm.New(cfg.ExtraFragments...)}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(up chi.Router) {
		if cfg.RatePerSec > 0 {
			up.Use(NewLimiter(cfg.RatePerSec, cfg.Burst).Handler)
		}
		up.Use(maxBody(cfg.MaxUploadBytes))

		up.Post("/dedupe", h.dedupe)
		up.Post("/split", h.split)
		up.Post("/xhtml", h.xhtml)
		up.Route("/marc", func(mr chi.Router) {
			mr.Post("/", h.marcHTML)
			mr.Post("/form", h.marcForm)
		})
	})

	return r
}

func (h *handler) dedupe(w http.ResponseWriter, r *http.Request) {
	opts := []dedupe.Option{dedupe.WithNormalizer(h.normalizer)}
	seed := h.cfg.Seed
	if s := r.URL.Query().Get("seed"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "seed must be a non-negative integer")
			return
		}
		seed = v
	}
	if seed != 0 {
		opts = append(opts, dedupe.WithSeed(seed))
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	recs, err := records.ReadCSV(r.Context(), bytes.NewReader(body), records.ReadOptions{
		Columns: h.cfg.Columns,
		Charset: h.cfg.Charset,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	out, details := dedupe.New(opts...).Run(recs)

	var buf bytes.Buffer
	if err := records.WriteCSV(&buf, out); err != nil {
		writeInternal(w, r, err)
		return
	}
	zap.L().Info("dedupe request complete",
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.Int("records", len(recs)),
		zap.Int("subjects", len(details)),
	)
	writeDownload(w, "text/csv; charset=utf-8", DedupeFilename, buf.Bytes())
}

func (h *handler) split(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	image := q.Get("mode") == "image"
	marker := strings.TrimSpace(q.Get("marker"))
	if !image && marker == "" {
		writeError(w, http.StatusBadRequest, "marker or mode=image is required")
		return
	}
	base := q.Get("name")
	if base == "" {
		base = "split"
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var (
		parts []splitter.Part
		err   error
	)
	if image {
		parts, err = splitter.ByImage(string(body))
	} else {
		var chunks []string
		chunks, err = splitter.ByMarker(string(body), marker)
		parts = splitter.NameChunks(base, chunks, h.cfg.PadWidth)
	}
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := splitter.WriteArchive(&buf, parts); err != nil {
		writeInternal(w, r, err)
		return
	}
	writeDownload(w, "application/zip", SplitFilename, buf.Bytes())
}

func (h *handler) xhtml(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	pages, err := xhtml.ExtractPages(bytes.NewReader(body))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := xhtml.WriteCSV(&buf, pages); err != nil {
		writeInternal(w, r, err)
		return
	}
	writeDownload(w, "text/csv; charset=utf-8", XHTMLFilename, buf.Bytes())
}

func (h *handler) marcHTML(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	rec, err := marc.FromHTML(bytes.NewReader(body), h.cfg.MARC)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.writeMARC(w, r, rec)
}

func (h *handler) marcForm(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	forms, err := marc.ParseForms(bytes.NewReader(body))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	recs := make([]marc.Record, 0, len(forms))
	for _, f := range forms {
		rec, err := f.Build()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		recs = append(recs, rec)
	}
	h.writeMARC(w, r, recs...)
}

func (h *handler) writeMARC(w http.ResponseWriter, r *http.Request, recs ...marc.Record) {
	out, err := marc.Marshal(recs...)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeDownload(w, "application/xml; charset=utf-8", MARCFilename, out)
}

func maxBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// readBody reads the whole upload. On failure it writes the error response
// and returns false.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "read request body")
		return nil, false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		writeError(w, http.StatusBadRequest, "request body is empty")
		return nil, false
	}
	return body, true
}

func writeDownload(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	zap.L().Error("request failed",
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(eris.Wrap(err, "server: write response")),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}
