// Package tui provides an interactive terminal user interface for animerec.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/animerec/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI talks to.
type Ports struct {
	// Recommendation answers free-text queries with grounded suggestions.
	Recommendation driving.RecommendationService

	// Settings lists the resolved configuration. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(recommendation driving.RecommendationService, settings driving.SettingsService) *Ports {
	return &Ports{
		Recommendation: recommendation,
		Settings:       settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrMissingPorts
	}
	if p.Recommendation == nil {
		return ErrMissingRecommendationService
	}
	return nil
}
