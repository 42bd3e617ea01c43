package driving

import (
	"context"

	"github.com/custodia-labs/animerec/internal/core/domain"
)

// BuildReport is the outcome of a full offline build.
type BuildReport struct {
	Normalise *domain.NormaliseReport
	Index     *domain.BuildResult
}

// NormaliseService converts the raw catalog without touching the index or
// any embedding provider.
type NormaliseService interface {
	// Normalise converts the raw catalog into the processed catalog.
	// It never fails; callers check the report.
	Normalise(ctx context.Context) *domain.NormaliseReport
}

// BuildService runs the offline ingestion pipeline.
type BuildService interface {
	NormaliseService

	// Build normalises the catalog and builds the similarity index from it.
	Build(ctx context.Context) (*BuildReport, error)
}
