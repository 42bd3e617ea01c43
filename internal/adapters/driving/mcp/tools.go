package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/animerec/internal/core/domain"
)

// RecommendInput is the input schema for the recommend tool.
type RecommendInput struct {
	Query          string `json:"query" jsonschema:"what the user wants to watch, in free text"`
	IncludeSources bool   `json:"include_sources,omitempty" jsonschema:"also return the catalog entries the answer is grounded in"`
}

// RecommendOutput is the output schema for the recommend tool.
type RecommendOutput struct {
	Answer  string        `json:"answer"`
	Sources []ChunkOutput `json:"sources,omitempty"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"text to match against the anime catalog"`
	K     int    `json:"k,omitempty" jsonschema:"number of catalog chunks to return (default from settings)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// ChunkOutput represents a single retrieved catalog chunk.
type ChunkOutput struct {
	DocumentID string  `json:"document_id"`
	Content    string  `json:"content"`
	Distance   float64 `json:"distance"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recommend",
		Description: "Recommend anime for a free-text request, grounded in the local catalog",
	}, s.handleRecommend)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the anime catalog entries closest to a query",
	}, s.handleRetrieve)
}

// handleRecommend handles the recommend tool invocation.
func (s *Server) handleRecommend(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecommendInput,
) (*mcp.CallToolResult, RecommendOutput, error) {
	if !input.IncludeSources {
		answer, err := s.ports.Recommendation.Recommend(ctx, input.Query)
		if err != nil {
			return nil, RecommendOutput{}, err
		}
		return nil, RecommendOutput{Answer: answer}, nil
	}

	rec, err := s.ports.Recommendation.RecommendWithSources(ctx, input.Query)
	if err != nil {
		return nil, RecommendOutput{}, err
	}
	return nil, RecommendOutput{Answer: rec.Answer, Sources: toChunkOutputs(rec.Sources)}, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	k := input.K
	if k <= 0 {
		k = s.ports.defaultK()
	}

	hits, err := s.ports.Retrieval.Retrieve(ctx, input.Query, k)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	return nil, RetrieveOutput{Chunks: toChunkOutputs(hits), Count: len(hits)}, nil
}

func toChunkOutputs(hits []domain.RetrievedChunk) []ChunkOutput {
	out := make([]ChunkOutput, len(hits))
	for i := range hits {
		out[i] = ChunkOutput{
			DocumentID: hits[i].Chunk.DocumentID,
			Content:    hits[i].Chunk.Content,
			Distance:   hits[i].Distance,
		}
	}
	return out
}
