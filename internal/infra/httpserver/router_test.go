package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edimaudo/daid/internal/application"
	appanalysis "github.com/edimaudo/daid/internal/application/analysis"
	domai "github.com/edimaudo/daid/internal/domain/ai"
	domain "github.com/edimaudo/daid/internal/domain/analysis"
)

type stubGenerator struct {
	text  string
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, req domai.GenerateRequest) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type memRepo struct {
	saved []*domain.Analysis
}

func (m *memRepo) Save(ctx context.Context, a *domain.Analysis) error {
	m.saved = append(m.saved, a)
	return nil
}

func (m *memRepo) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Analysis, error) {
	return m.saved, nil
}

func (m *memRepo) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	for _, a := range m.saved {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

type envelope struct {
	Success      bool            `json:"success"`
	AnalysisText *string         `json:"analysisText"`
	AnalysisData json.RawMessage `json:"analysisData"`
	Error        *string         `json:"error"`
}

func newTestRouter(svc *appanalysis.Service, opts Options) http.Handler {
	if svc.Clock == nil {
		svc.Clock = application.SystemClock{}
	}
	return NewRouter(svc, opts)
}

func postAnalysis(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/generate_analysis", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "response must be a JSON envelope: %s", rec.Body.String())
	return rec, env
}

// requireExactlyOne asserts the envelope invariant: exactly one of
// analysisText, analysisData, error is populated.
func requireExactlyOne(t *testing.T, env envelope) {
	t.Helper()
	populated := 0
	if env.AnalysisText != nil {
		populated++
	}
	if env.AnalysisData != nil {
		populated++
	}
	if env.Error != nil {
		populated++
	}
	require.Equal(t, 1, populated, "exactly one payload key must be set")
}

func TestGenerateAnalysis_MissingCredential(t *testing.T) {
	h := newTestRouter(&appanalysis.Service{Generator: nil, Mode: domain.ModeMarkdown}, Options{})

	for _, body := range []string{`{"userInput":"decide something"}`, `{}`, `{"userInput":""}`} {
		rec, env := postAnalysis(t, h, body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.False(t, env.Success)
		require.NotNil(t, env.Error)
		assert.Contains(t, *env.Error, "configuration error")
		requireExactlyOne(t, env)
	}
}

func TestGenerateAnalysis_EmptyInput(t *testing.T) {
	gen := &stubGenerator{text: "unused"}
	h := newTestRouter(&appanalysis.Service{Generator: gen, Mode: domain.ModeMarkdown}, Options{})

	for _, body := range []string{`{}`, `{"userInput":""}`, `{"userInput":"   "}`} {
		rec, env := postAnalysis(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.Success)
		require.NotNil(t, env.Error)
		requireExactlyOne(t, env)
	}
	assert.Zero(t, gen.calls, "provider must not be called for invalid input")
}

func TestGenerateAnalysis_MarkdownSuccess(t *testing.T) {
	const report = "## Summary\n\nPick option B.\n\n## Key Findings\n\n- lower cost\n"
	gen := &stubGenerator{text: report}
	h := newTestRouter(&appanalysis.Service{Generator: gen, Mode: domain.ModeMarkdown}, Options{})

	rec, env := postAnalysis(t, h, `{"userInput":"option A vs option B"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.AnalysisText)
	assert.Equal(t, report, *env.AnalysisText, "provider text passes through unchanged")
	requireExactlyOne(t, env)
}

func TestGenerateAnalysis_LegacyFieldName(t *testing.T) {
	gen := &stubGenerator{text: "report"}
	h := newTestRouter(&appanalysis.Service{Generator: gen, Mode: domain.ModeMarkdown}, Options{})

	rec, env := postAnalysis(t, h, `{"userQuery":"legacy clients send this field"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateAnalysis_JSONSuccess(t *testing.T) {
	raw := `{"schema_version":1,"title":"Vendor choice","frameworks":[{"name":"SWOT","rationale":"r","decision":"d","sections":[{"title":"Strengths","content":"c"}]}]}`
	gen := &stubGenerator{text: raw}
	h := newTestRouter(&appanalysis.Service{Generator: gen, Mode: domain.ModeJSON}, Options{})

	rec, env := postAnalysis(t, h, `{"userInput":"vendor comparison data"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.AnalysisData)
	requireExactlyOne(t, env)

	var data struct {
		SchemaVersion int    `json:"schema_version"`
		Title         string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.AnalysisData, &data))
	assert.Equal(t, 1, data.SchemaVersion)
	assert.Equal(t, "Vendor choice", data.Title)
}

func TestGenerateAnalysis_MalformedJSON(t *testing.T) {
	gen := &stubGenerator{text: "Sure! Here is your analysis: {not json"}
	h := newTestRouter(&appanalysis.Service{Generator: gen, Mode: domain.ModeJSON}, Options{})

	rec, env := postAnalysis(t, h, `{"userInput":"vendor comparison data"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Contains(t, *env.Error, "malformed")
	requireExactlyOne(t, env)
}

func TestGenerateAnalysis_ProviderError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model overloaded, try later")}
	h := newTestRouter(&appanalysis.Service{Generator: gen, Mode: domain.ModeMarkdown}, Options{})

	rec, env := postAnalysis(t, h, `{"userInput":"some data"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Contains(t, *env.Error, "model overloaded, try later", "provider message must be embedded")
}

func TestGenerateAnalysis_QuotaExceeded(t *testing.T) {
	gen := &stubGenerator{err: fmt.Errorf("%w: 429 from provider", domai.ErrQuotaExceeded)}
	h := newTestRouter(&appanalysis.Service{Generator: gen, Mode: domain.ModeMarkdown}, Options{})

	rec, env := postAnalysis(t, h, `{"userInput":"some data"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, env.Success)
}

func TestGenerateAnalysis_Idempotent(t *testing.T) {
	gen := &stubGenerator{text: "## Deterministic report"}
	h := newTestRouter(&appanalysis.Service{Generator: gen, Mode: domain.ModeMarkdown}, Options{})

	rec1, env1 := postAnalysis(t, h, `{"userInput":"same input"}`)
	rec2, env2 := postAnalysis(t, h, `{"userInput":"same input"}`)
	assert.Equal(t, rec1.Code, rec2.Code)
	assert.Equal(t, env1, env2, "identical input against a deterministic stub yields identical envelopes")
}

func TestGenerateAnalysis_InvalidBody(t *testing.T) {
	gen := &stubGenerator{text: "unused"}
	h := newTestRouter(&appanalysis.Service{Generator: gen, Mode: domain.ModeMarkdown}, Options{})

	rec, env := postAnalysis(t, h, `{"userInput": not-json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Zero(t, gen.calls)
}

func TestListAnalyses(t *testing.T) {
	repo := &memRepo{}
	gen := &stubGenerator{text: "report"}
	h := newTestRouter(&appanalysis.Service{Generator: gen, Repo: repo, Mode: domain.ModeMarkdown}, Options{})

	_, env := postAnalysis(t, h, `{"userInput":"first"}`)
	require.True(t, env.Success)
	require.Len(t, repo.saved, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/analyses?page=1&page_size=10", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var list []*domain.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "first", list[0].Input)
	assert.Equal(t, "report", list[0].Result)
}

func TestGetAnalysis_NotFound(t *testing.T) {
	h := newTestRouter(&appanalysis.Service{Repo: &memRepo{}, Mode: domain.ModeMarkdown}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/analyses/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	gen := &stubGenerator{text: "report"}
	h := newTestRouter(&appanalysis.Service{Generator: gen, Mode: domain.ModeMarkdown}, Options{APIKey: "sekret"})

	req := httptest.NewRequest(http.MethodPost, "/api/generate_analysis", strings.NewReader(`{"userInput":"x"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/generate_analysis", strings.NewReader(`{"userInput":"x"}`))
	req.Header.Set("Authorization", "Bearer sekret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPages(t *testing.T) {
	h := newTestRouter(&appanalysis.Service{Mode: domain.ModeMarkdown}, Options{})

	for _, path := range []string{"/", "/app"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", path)
		assert.Contains(t, rec.Body.String(), "DAID", path)
	}
}

func TestHealthLiveness(t *testing.T) {
	h := newTestRouter(&appanalysis.Service{Mode: domain.ModeMarkdown}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(&appanalysis.Service{Mode: domain.ModeMarkdown}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var snap map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Contains(t, snap, "requests_total")
	assert.Contains(t, snap, "analyses_total")
}
