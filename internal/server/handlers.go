package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/logging"
	"card-codec/internal/common/pagination"
	"card-codec/internal/common/ratelimit"
	"card-codec/internal/format"
	"card-codec/internal/interop"
	"card-codec/internal/middleware"
	"card-codec/internal/storage"
	"card-codec/internal/vcard"
	govcard "github.com/emersion/go-vcard"
	"github.com/gorilla/mux"
)

const maxBodySize = 4 << 20

// Handlers serves the address book.
type Handlers struct {
	book    *storage.AddressBook
	opts    format.Options
	log     logging.Logger
	limiter *ratelimit.Limiter
}

// NewHandlers creates the handlers. opts configures every format written or
// read; its Logger is replaced by logger.
func NewHandlers(book *storage.AddressBook, opts format.Options, logger logging.Logger) *Handlers {
	log := logging.OrNop(logger)
	opts.Logger = log
	return &Handlers{book: book, opts: opts, log: log}
}

// WithRateLimit limits every route except /health per client IP.
func (h *Handlers) WithRateLimit(limiter *ratelimit.Limiter) *Handlers {
	h.limiter = limiter
	return h
}

// Router returns the routes:
//
//	GET    /health
//	GET    /cards?limit=&offset=
//	POST   /cards
//	GET    /cards/{uid}
//	DELETE /cards/{uid}
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Recovery(h.log), middleware.Logging(h.log))
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	cards := r.PathPrefix("/cards").Subrouter()
	if h.limiter != nil {
		cards.Use(ratelimit.HTTPMiddleware(h.limiter, ratelimit.IPKey))
	}
	cards.HandleFunc("", h.ListCards).Methods(http.MethodGet)
	cards.HandleFunc("", h.CreateCards).Methods(http.MethodPost)
	cards.HandleFunc("/{uid}", h.GetCard).Methods(http.MethodGet)
	cards.HandleFunc("/{uid}", h.DeleteCard).Methods(http.MethodDelete)
	return r
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.book.Health(); err != nil {
		h.sendError(w, errors.IOError("address book unavailable", err))
		return
	}
	h.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListResponse is the body of GET /cards.
type ListResponse = pagination.Response[interop.Summary]

func (h *Handlers) ListCards(w http.ResponseWriter, r *http.Request) {
	params := pagination.ParseParams(r)
	cards, total, err := h.book.List(params.Limit, params.Offset)
	if err != nil {
		h.sendError(w, err)
		return
	}

	summaries := make([]interop.Summary, 0, len(cards))
	for _, card := range cards {
		summaries = append(summaries, h.summarize(card))
	}
	h.sendJSON(w, http.StatusOK, pagination.NewResponse(summaries, params, total))
}

func (h *Handlers) summarize(card *storage.Card) interop.Summary {
	decoded, err := govcard.NewDecoder(strings.NewReader(card.Text)).Decode()
	if err != nil {
		h.log.Warn("stored card not readable", logging.String("uid", card.UID), logging.Err(err))
		return interop.Summary{UID: card.UID, FormattedName: card.FormattedName}
	}
	summary := interop.Summarize(decoded)
	summary.UID = card.UID
	return summary
}

func (h *Handlers) GetCard(w http.ResponseWriter, r *http.Request) {
	f, ok := h.responseFormat(r)
	if !ok {
		h.sendJSON(w, http.StatusNotAcceptable, map[string]string{"error": "none of the accepted media types can be served"})
		return
	}

	rec, err := h.book.Get(mux.Vars(r)["uid"])
	if err != nil {
		h.sendError(w, err)
		return
	}

	opts := h.opts
	opts.Title = rec.FormattedName()
	var body strings.Builder
	warnings, err := format.Encode(f, &body, []*vcard.Record{rec}, opts)
	if err != nil {
		h.sendError(w, err)
		return
	}

	w.Header().Set("Content-Type", f.MediaType()+"; charset=utf-8")
	w.Header().Set("Vary", "Accept")
	w.Header().Set("X-Card-Warnings", strconv.Itoa(len(warnings)))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body.String()))
}

// CreateResponse is the body of POST /cards.
type CreateResponse struct {
	Cards    []*storage.Card `json:"cards"`
	Warnings []string        `json:"warnings"`
}

func (h *Handlers) CreateCards(w http.ResponseWriter, r *http.Request) {
	f := format.VCF
	if ct := r.Header.Get("Content-Type"); ct != "" {
		var ok bool
		if f, ok = format.ForMediaType(ct); !ok {
			h.sendError(w, errors.UnsupportedError("content type "+ct))
			return
		}
	}

	records, warnings, err := format.Decode(f, http.MaxBytesReader(w, r.Body, maxBodySize), h.opts)
	if err != nil {
		h.sendError(w, err)
		return
	}
	if len(records) == 0 {
		h.sendError(w, errors.ValidationError("request body holds no records"))
		return
	}

	cards, importWarnings, err := h.book.Import(records)
	if err != nil {
		h.sendError(w, err)
		return
	}
	warnings = append(warnings, importWarnings...)
	h.log.Info("cards imported", logging.Int("count", len(cards)), logging.String("format", string(f)))

	h.sendJSON(w, http.StatusCreated, CreateResponse{Cards: cards, Warnings: warnings.Strings()})
}

func (h *Handlers) DeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.book.Delete(mux.Vars(r)["uid"]); err != nil {
		h.sendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// responseFormat picks the format of a GET response: the format query
// parameter when present, otherwise the Accept header.
func (h *Handlers) responseFormat(r *http.Request) (format.Format, bool) {
	if name := r.URL.Query().Get("format"); name != "" {
		f, err := format.Parse(name)
		return f, err == nil
	}
	return negotiate(r.Header.Get("Accept"))
}

type acceptEntry struct {
	format format.Format
	q      float64
	order  int
}

// negotiate returns the acceptable format with the highest quality. Ties go
// to the entry listed first; */* and text/* select vCard text.
func negotiate(accept string) (format.Format, bool) {
	if strings.TrimSpace(accept) == "" {
		return format.VCF, true
	}

	var entries []acceptEntry
	for i, part := range strings.Split(accept, ",") {
		mt, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if qs, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(qs, 64); err == nil {
				q = parsed
			}
		}
		if q <= 0 {
			continue
		}

		var f format.Format
		switch mt {
		case "*/*", "text/*":
			f = format.VCF
		default:
			var ok bool
			if f, ok = format.ForMediaType(mt); !ok {
				continue
			}
		}
		entries = append(entries, acceptEntry{format: f, q: q, order: i})
	}
	if len(entries) == 0 {
		return "", false
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].q > entries[b].q
	})
	return entries[0].format, true
}

func (h *Handlers) sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("failed to encode response", err)
	}
}

// sendError maps the error type to a status code.
func (h *Handlers) sendError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetType(err) {
	case errors.ErrTypeNotFound:
		status = http.StatusNotFound
	case errors.ErrTypeSyntax, errors.ErrTypeValidation:
		status = http.StatusBadRequest
	case errors.ErrTypeUnsupported:
		status = http.StatusUnsupportedMediaType
	case errors.ErrTypeIO:
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", err)
	}
	h.sendJSON(w, status, map[string]string{"error": err.Error()})
}
