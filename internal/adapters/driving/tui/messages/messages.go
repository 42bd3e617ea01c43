// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driving"
)

// RecommendRequested is a command to ask for a recommendation.
type RecommendRequested struct {
	Query string
}

// RecommendCompleted carries the answer and its sources back to the model.
type RecommendCompleted struct {
	Recommendation *domain.Recommendation
	Err            error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewRecommend is the query, answer and sources view.
	ViewRecommend
	// ViewSettings lists the resolved settings.
	ViewSettings
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewRecommend:
		return "recommend"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// SettingsLoaded carries the resolved settings entries.
type SettingsLoaded struct {
	Entries []driving.SettingEntry
	Err     error
}
