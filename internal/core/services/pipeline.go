package services

import (
	"context"

	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driven"
	"github.com/custodia-labs/animerec/internal/core/ports/driving"
	"github.com/custodia-labs/animerec/internal/logger"
)

// Ensure the services implement the interfaces.
var (
	_ driving.NormaliseService = (*NormaliseService)(nil)
	_ driving.BuildService     = (*BuildService)(nil)
)

// NormaliseService runs the catalog normaliser against the configured paths.
type NormaliseService struct {
	normaliser driven.CatalogNormaliser
	catalog    domain.CatalogSettings
}

// NewNormaliseService creates a new normalise service.
func NewNormaliseService(normaliser driven.CatalogNormaliser, catalog domain.CatalogSettings) *NormaliseService {
	return &NormaliseService{
		normaliser: normaliser,
		catalog:    catalog,
	}
}

// Normalise converts the raw catalog into the processed catalog.
func (s *NormaliseService) Normalise(ctx context.Context) *domain.NormaliseReport {
	logger.Section("Normalise catalog")
	report := s.normaliser.Normalise(ctx, s.catalog.RawPath, s.catalog.ProcessedPath)
	if report.OK() {
		logger.Debug("Normalised %d of %d rows into %s", report.RowsKept, report.RowsRead, report.OutputPath)
	}
	return report
}

// BuildService runs the offline pipeline: normalise the raw catalog, then
// build the index from the processed file.
type BuildService struct {
	*NormaliseService
	builder *IndexBuilder
}

// NewBuildService creates a new build service.
func NewBuildService(normaliser driven.CatalogNormaliser, builder *IndexBuilder, catalog domain.CatalogSettings) *BuildService {
	return &BuildService{
		NormaliseService: NewNormaliseService(normaliser, catalog),
		builder:          builder,
	}
}

// Build normalises the catalog and, when that produced a file, builds the index.
// The report is returned even when the build fails.
func (s *BuildService) Build(ctx context.Context) (*driving.BuildReport, error) {
	report := &driving.BuildReport{Normalise: s.Normalise(ctx)}
	if !report.Normalise.OK() {
		err := report.Normalise.Err
		if err == nil {
			err = &domain.DataLoadError{Path: s.catalog.RawPath}
		}
		return report, err
	}

	result, err := s.builder.BuildFromProcessedCSV(ctx, report.Normalise.OutputPath)
	if err != nil {
		return report, err
	}
	report.Index = result
	return report, nil
}
