package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/animerec/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/animerec/internal/core/domain"
)

var (
	retrieveK    int
	retrieveJSON bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query...]",
	Short: "Show the catalog chunks closest to a query",
	Long: `Embeds the query and prints the nearest chunks from the similarity
index, closest first. No completion service is called.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveK, "top-k", "k", 0, "number of chunks (default retrieval.k)")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output chunks as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	svc, err := getServices()
	if err != nil {
		return err
	}

	k := retrieveK
	if k <= 0 {
		k, err = configuredK(svc)
		if err != nil {
			return err
		}
	}

	retrieval, err := svc.Retrieval(cmd.Context())
	if err != nil {
		return err
	}

	chunks, err := retrieval.Retrieve(cmd.Context(), query, k)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveJSON {
		return outputChunksJSON(cmd, chunks)
	}
	outputChunks(cmd, chunks)
	return nil
}

// configuredK reads retrieval.k from settings.
func configuredK(svc Services) (int, error) {
	settings, err := svc.Settings()
	if err != nil {
		return 0, err
	}
	app, err := settings.Get()
	if err != nil {
		return 0, fmt.Errorf("reading settings: %w", err)
	}
	if app.Retrieval.K <= 0 {
		return domain.DefaultRetrievalK, nil
	}
	return app.Retrieval.K, nil
}

type chunkJSON struct {
	DocumentID string         `json:"document_id"`
	Position   int            `json:"position"`
	Distance   float64        `json:"distance"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func outputChunksJSON(cmd *cobra.Command, chunks []domain.RetrievedChunk) error {
	out := make([]chunkJSON, len(chunks))
	for i, c := range chunks {
		out[i] = chunkJSON{
			DocumentID: c.Chunk.DocumentID,
			Position:   c.Chunk.Position,
			Distance:   c.Distance,
			Content:    c.Chunk.Content,
			Metadata:   c.Chunk.Metadata,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chunks: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputChunks(cmd *cobra.Command, chunks []domain.RetrievedChunk) {
	if len(chunks) == 0 {
		cmd.Println("No matching chunks.")
		return
	}
	for i, c := range chunks {
		cmd.Printf("  [%d] %s (distance %.4f)\n", i+1, c.Chunk.DocumentID, c.Distance)
		cmd.Printf("      %s\n\n", list.Truncate(c.Chunk.Content, 160))
	}
}
