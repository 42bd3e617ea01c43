package mcp

import (
	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Recommendation answers free-text queries.
	Recommendation driving.RecommendationService

	// Retrieval returns the nearest catalog chunks.
	Retrieval driving.RetrievalService

	// Settings exposes the resolved configuration. Optional.
	Settings driving.SettingsService

	// DefaultK is used when a retrieve call does not set k.
	DefaultK int
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Recommendation == nil {
		return ErrMissingRecommendationService
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}

func (p *Ports) defaultK() int {
	if p.DefaultK > 0 {
		return p.DefaultK
	}
	return domain.DefaultRetrievalK
}
