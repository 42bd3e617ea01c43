package tui

import "errors"

// ErrMissingPorts is returned when the app is created without ports.
var ErrMissingPorts = errors.New("tui: ports are required")

// ErrMissingRecommendationService is returned when the recommendation service is not provided.
var ErrMissingRecommendationService = errors.New("tui: recommendation service is required")
