package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for animerec resources.
	uriScheme = "animerec://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "settings",
		Name:        "settings",
		Description: "Resolved animerec settings with their origin (secrets masked)",
		MIMEType:    "application/json",
	}, s.handleSettingsResource)
}

// settingInfo is one entry of the settings resource.
type settingInfo struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// handleSettingsResource returns the resolved settings.
func (s *Server) handleSettingsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Settings == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	entries, err := s.ports.Settings.Entries()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	infos := make([]settingInfo, len(entries))
	for i, e := range entries {
		infos[i] = settingInfo{Key: e.Key, Value: e.Value, Source: e.Source}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling settings: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
