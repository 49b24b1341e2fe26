package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edimaudo/daid/internal/application"
	domai "github.com/edimaudo/daid/internal/domain/ai"
	domain "github.com/edimaudo/daid/internal/domain/analysis"
	"github.com/edimaudo/daid/internal/infra/ai/prompt"
)

// Service implements the analysis use-cases.
// It is stateless between calls and safe for concurrent use.
type Service struct {
	// Generator is nil when no provider credential was configured at startup;
	// every Analyze call then fails with domain.ErrNoCredential.
	Generator domai.Generator
	// Repo and Archive are optional. When set, successful analyses are
	// persisted and their raw output archived, best-effort.
	Repo    domain.Repository
	Archive domain.ArchiveStore
	Clock   application.Clock
	Mode    domain.Mode
}

// AnalyzeCommand carries the caller's text.
type AnalyzeCommand struct {
	Input string
}

// AnalyzeResult is the shaped outcome: Text in markdown mode, Data in json mode.
type AnalyzeResult struct {
	ID   string
	Text string
	Data json.RawMessage
}

// Analyze runs one synchronous provider call: validate input, build the
// prompt, generate, shape the result per the configured output mode.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (AnalyzeResult, error) {
	if s.Generator == nil {
		return AnalyzeResult{}, domain.ErrNoCredential
	}
	if strings.TrimSpace(cmd.Input) == "" {
		return AnalyzeResult{}, domain.ErrEmptyInput
	}

	mode := s.Mode
	if !mode.Valid() {
		mode = domain.ModeMarkdown
	}

	start := s.Clock.Now()
	raw, err := s.Generator.Generate(ctx, domai.GenerateRequest{
		SystemPrompt: prompt.GetSystemPrompt(mode),
		UserPrompt:   prompt.GetUserPrompt(cmd.Input),
		ForceJSON:    mode == domain.ModeJSON,
	})
	if err != nil {
		if errors.Is(err, domai.ErrQuotaExceeded) {
			return AnalyzeResult{}, err
		}
		return AnalyzeResult{}, fmt.Errorf("%w: %v", domai.ErrGeneration, err)
	}

	res := AnalyzeResult{ID: uuid.New().String()}
	if mode == domain.ModeJSON {
		if _, perr := prompt.ParseReport(raw); perr != nil {
			return AnalyzeResult{}, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, perr)
		}
		res.Data = json.RawMessage(prompt.StripFences(raw))
	} else {
		res.Text = raw
	}

	s.record(ctx, res.ID, mode, cmd.Input, raw, start)
	return res, nil
}

// record archives and persists the analysis. Failures are logged only; the
// caller already has a valid result and must not see storage errors.
func (s *Service) record(ctx context.Context, id string, mode domain.Mode, input, raw string, start time.Time) {
	a := &domain.Analysis{
		ID:        domain.AnalysisID(id),
		Mode:      mode,
		Input:     input,
		Result:    raw,
		CreatedAt: s.Clock.Now(),
	}
	a.DurationMS = a.CreatedAt.Sub(start).Milliseconds()

	if s.Archive != nil {
		key, contentType := archiveObject(id, mode)
		url, err := s.Archive.Put(ctx, key, contentType, []byte(raw))
		if err != nil {
			log.Printf("archive analysis %s: %v", id, err)
		} else {
			a.ArchiveURL = url
		}
	}
	if s.Repo != nil {
		if err := s.Repo.Save(ctx, a); err != nil {
			log.Printf("save analysis %s: %v", id, err)
		}
	}
}

func archiveObject(id string, mode domain.Mode) (key, contentType string) {
	if mode == domain.ModeJSON {
		return "analyses/" + id + ".json", "application/json"
	}
	return "analyses/" + id + ".md", "text/markdown"
}

// ListAnalyses returns a page of stored analyses, newest first. With no
// repository configured it returns an empty page.
func (s *Service) ListAnalyses(ctx context.Context, page, pageSize int) ([]*domain.Analysis, error) {
	if s.Repo == nil {
		return []*domain.Analysis{}, nil
	}
	return s.Repo.Paginate(ctx, page, pageSize)
}

// GetAnalysis returns one stored analysis by id.
func (s *Service) GetAnalysis(ctx context.Context, id string) (*domain.Analysis, error) {
	if s.Repo == nil {
		return nil, nil
	}
	return s.Repo.Get(ctx, domain.AnalysisID(id))
}
