package driven

import (
	"context"

	"github.com/custodia-labs/animerec/internal/core/domain"
)

// CatalogNormaliser turns the raw anime catalog into the processed
// single-column catalog and reads the processed catalog back as documents.
type CatalogNormaliser interface {
	// Normalise reads the raw catalog at src and writes the processed catalog
	// to dst. It never returns an error: failures are recorded in the report
	// and signalled by an empty OutputPath.
	Normalise(ctx context.Context, src, dst string) *domain.NormaliseReport

	// LoadProcessed reads the processed catalog, one document per row.
	LoadProcessed(ctx context.Context, path string) ([]domain.NormalizedDocument, error)
}
