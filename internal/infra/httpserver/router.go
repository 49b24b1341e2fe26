package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/edimaudo/daid/internal/application/analysis"
	domai "github.com/edimaudo/daid/internal/domain/ai"
	domain "github.com/edimaudo/daid/internal/domain/analysis"
	"github.com/edimaudo/daid/internal/middleware"
)

// Options carries the router's deployment knobs.
type Options struct {
	// APIKey, when non-empty, gates the /api routes behind bearer auth.
	APIKey         string
	AllowedOrigins []string
	// HealthCheckers feed GET /health; nil means liveness only.
	HealthCheckers map[string]middleware.HealthChecker
	// RateLimit tokens per bucket for the /api routes; 0 disables limiting.
	RateLimit int
}

type Router struct {
	svc *appanalysis.Service
}

func NewRouter(svc *appanalysis.Service, opts Options) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/", r.handleIndexPage)
	mux.Get("/app", r.handleAppPage)
	mux.Get("/health", r.healthHandler(opts))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/api", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opts.APIKey))
		if opts.RateLimit > 0 {
			rt.Use(middleware.RateLimitMiddleware(opts.RateLimit, opts.RateLimit))
		}
		rt.Post("/generate_analysis", r.handleGenerateAnalysis)
		rt.Get("/analyses", r.wrap(r.handleListAnalyses))
		rt.Get("/analyses/{id}", r.wrap(r.handleGetAnalysis))
	})

	return mux
}

func (r *Router) healthHandler(opts Options) http.HandlerFunc {
	if len(opts.HealthCheckers) == 0 {
		return middleware.LivenessHandler
	}
	return middleware.HealthHandler(opts.HealthCheckers)
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /api/generate_analysis
// Body: {"userInput": "<text>"}. The legacy field name "userQuery" is accepted
// when userInput is absent.
func (r *Router) handleGenerateAnalysis(w http.ResponseWriter, req *http.Request) {
	var body struct {
		UserInput string `json:"userInput"`
		UserQuery string `json:"userQuery"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}
	input := body.UserInput
	if input == "" {
		input = body.UserQuery
	}
	input = middleware.SanitizeString(input)
	if input != "" {
		// empty input flows through to the service for its canonical error
		if err := middleware.ValidateInput(input); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	res, err := r.svc.Analyze(req.Context(), appanalysis.AnalyzeCommand{Input: input})
	if err != nil {
		middleware.IncrementAnalysesFailed()
		r.writeAnalyzeError(w, err)
		return
	}

	middleware.IncrementAnalyses()
	payload := map[string]any{"success": true}
	if res.Data != nil {
		payload["analysisData"] = res.Data
	} else {
		payload["analysisText"] = res.Text
	}
	writeJSON(w, http.StatusOK, payload)
}

// writeAnalyzeError maps the error taxonomy onto envelopes:
// configuration 500, caller 400, quota 429, upstream/parse/unexpected 500.
func (r *Router) writeAnalyzeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoCredential):
		writeError(w, http.StatusInternalServerError,
			"Server configuration error: provider API key is missing. Please set the OPENAI_API_KEY environment variable.")
	case errors.Is(err, domain.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "No user input provided for analysis.")
	case errors.Is(err, domain.ErrMalformedOutput):
		writeError(w, http.StatusInternalServerError,
			"AI generation returned malformed output. Please retry the analysis.")
	case errors.Is(err, domai.ErrQuotaExceeded):
		writeError(w, http.StatusTooManyRequests, "AI provider quota exceeded. Please try again later.")
	case errors.Is(err, domai.ErrGeneration):
		writeError(w, http.StatusInternalServerError, "AI generation failed due to API error: "+err.Error())
	default:
		log.Printf("internal server error: %v", err)
		writeError(w, http.StatusInternalServerError, "An unexpected server error occurred during processing.")
	}
}

// GET /api/analyses?page=&page_size=
func (r *Router) handleListAnalyses(w http.ResponseWriter, req *http.Request) error {
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))
	page = middleware.ValidatePage(page)
	size = middleware.ValidatePageSize(size)

	list, err := r.svc.ListAnalyses(req.Context(), page, size)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /api/analyses/{id}
func (r *Router) handleGetAnalysis(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	a, err := r.svc.GetAnalysis(req.Context(), id)
	if err != nil {
		return err
	}
	if a == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(a)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}
