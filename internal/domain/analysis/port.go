package analysis

import "context"

// Repository port for persisting and querying analyses
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Paginate(ctx context.Context, page, pageSize int) ([]*Analysis, error)
	Get(ctx context.Context, id AnalysisID) (*Analysis, error)
}

// ArchiveStore port for archiving raw provider output
type ArchiveStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}
