// Package mcp provides an MCP (Model Context Protocol) server adapter for animerec.
// It lets AI assistants ask for anime recommendations and inspect the
// catalog entries they are grounded in.
package mcp

import "errors"

var (
	// ErrMissingRecommendationService is returned when the recommendation service is not provided.
	ErrMissingRecommendationService = errors.New("mcp: recommendation service is required")

	// ErrMissingRetrievalService is returned when the retrieval service is not provided.
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
)
