package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/edimaudo/daid/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts an analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO analyses
  (id, mode, input, result, archive_url, duration_ms, created_at)
VALUES (?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  mode=VALUES(mode), input=VALUES(input), result=VALUES(result), archive_url=VALUES(archive_url), duration_ms=VALUES(duration_ms);
`
	mode := string(a.Mode)
	if mode == "" {
		mode = string(domain.ModeMarkdown)
	}
	result := a.Result
	if strings.TrimSpace(result) == "" {
		result = "-"
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q, a.ID, mode, a.Input, result, a.ArchiveURL, a.DurationMS, createdAt)
	return err
}

// Paginate returns a page of analyses ordered by created_at desc
func (r *AnalysisRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Analysis, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, mode, input, result, archive_url, duration_ms, created_at
FROM analyses
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Get returns one analysis by id
func (r *AnalysisRepository) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	const q = `
SELECT id, mode, input, result, archive_url, duration_ms, created_at
FROM analyses
WHERE id=?;
`
	row := r.db.QueryRowContext(ctx, q, id)
	a, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*domain.Analysis, error) {
	var a domain.Analysis
	var mode string
	var archiveURL sql.NullString
	var created time.Time
	if err := row.Scan(&a.ID, &mode, &a.Input, &a.Result, &archiveURL, &a.DurationMS, &created); err != nil {
		return nil, err
	}
	a.Mode = domain.Mode(mode)
	a.ArchiveURL = archiveURL.String
	a.CreatedAt = created
	return &a, nil
}
