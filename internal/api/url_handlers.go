package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/technosupport/live-urlgen/internal/authkey"
	"github.com/technosupport/live-urlgen/internal/config"
	"github.com/technosupport/live-urlgen/internal/events"
	"github.com/technosupport/live-urlgen/internal/metrics"
	"github.com/technosupport/live-urlgen/internal/urlgen"
)

const maxBody = 64 << 10

type URLHandler struct {
	Store   *config.Store
	Metrics *metrics.Collector
	Events  events.Publisher
	Replay  *authkey.ReplayGuard

	// Now and Rand override the signer's clock and entropy; nil uses the defaults.
	Now  func() time.Time
	Rand io.Reader
}

func NewURLHandler(store *config.Store, m *metrics.Collector, pub events.Publisher, replay *authkey.ReplayGuard) *URLHandler {
	if m == nil {
		m = metrics.NewCollector()
	}
	if pub == nil {
		pub = events.Noop{}
	}
	return &URLHandler{Store: store, Metrics: m, Events: pub, Replay: replay}
}

type generateResponse struct {
	ID         string         `json:"id"`
	StreamURLs []string       `json:"stream_urls"`
	Groups     []urlgen.Group `json:"groups"`
	IngestURL  string         `json:"ingest_url"`
}

// POST /generate
// Accepts the form fields as application/x-www-form-urlencoded or JSON.
func (h *URLHandler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	var in urlgen.FormInput
	if isJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid form")
			return
		}
		in = urlgen.FromValues(r.PostForm.Get)
	}

	res, err := h.run(in)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate urls")
		return
	}

	w.Header().Set("X-Generation-ID", res.ID)
	if wantsJSON(r) {
		respondJSON(w, http.StatusOK, generateResponse{
			ID:         res.ID,
			StreamURLs: res.URLs(),
			Groups:     res.Groups,
			IngestURL:  res.IngestURL,
		})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	res.WriteText(w)
}

// run generates the URLs for one submission and records it.
func (h *URLHandler) run(in urlgen.FormInput) (*urlgen.Result, error) {
	signer := &authkey.Signer{Now: h.Now, Rand: h.Rand, Debug: h.Store.Get().Signing.Debug}

	res, err := urlgen.NewGenerator(signer).Generate(in)
	h.Metrics.RecordGeneration(err)
	if err != nil {
		log.Printf("[urlgen] generate failed: %v", err)
		return nil, err
	}

	for _, g := range res.Groups {
		h.Metrics.RecordURLs(g.Scheme, in.StreamValidationKey != "", len(g.URLs))
	}
	h.Metrics.RecordURLs(urlgen.IngestScheme, in.IngestValidationKey != "", 1)

	if err := h.Events.Publish(events.NewGenerated(in, res)); err != nil {
		log.Printf("[urlgen] event %s not published: %v", res.ID, err)
	}
	log.Printf("[urlgen] %s generated %d urls for %s", res.ID, len(res.URLs()), in.BasePath())
	return res, nil
}

type validateRequest struct {
	URL     string `json:"url"`
	Path    string `json:"path"`
	AuthKey string `json:"auth_key"`
	Key     string `json:"key"`
}

type validateResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// POST /validate
// Either url, or path plus auth_key, is checked against key.
func (h *URLHandler) Validate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Key == "" {
		respondError(w, http.StatusBadRequest, "key is required")
		return
	}
	if req.URL == "" && req.Path == "" {
		respondError(w, http.StatusBadRequest, "url or path is required")
		return
	}

	cfg := h.Store.Get()
	v := &authkey.Validator{
		TTL:    cfg.Signing.TTL,
		Skew:   cfg.Signing.ClockSkew,
		Now:    h.Now,
		Replay: h.Replay,
	}

	var err error
	if req.URL != "" {
		err = v.ValidateURL(req.URL, req.Key)
	} else {
		err = v.Validate(req.Path, req.AuthKey, req.Key)
	}

	result := validationResult(err)
	h.Metrics.RecordValidation(result)
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, validateResponse{Valid: false, Reason: result})
		return
	}
	respondJSON(w, http.StatusOK, validateResponse{Valid: true})
}

func validationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, authkey.ErrMissing):
		return "missing"
	case errors.Is(err, authkey.ErrMalformed):
		return "malformed"
	case errors.Is(err, authkey.ErrExpired):
		return "expired"
	case errors.Is(err, authkey.ErrReplayed):
		return "replayed"
	case errors.Is(err, authkey.ErrInvalidSignature):
		return "invalid_signature"
	}
	return "error"
}
