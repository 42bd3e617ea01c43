package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var recommendSources bool

var recommendCmd = &cobra.Command{
	Use:   "recommend [query...]",
	Short: "Recommend anime for a free-text request",
	Long: `Retrieves the catalog entries closest to the request and asks the
completion model for recommendations grounded in them.

Examples:
  animerec recommend "a ninja story with rivals"
  animerec recommend --sources mecha with a slow start`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().BoolVarP(&recommendSources, "sources", "s", false, "also print the retrieved chunks")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return errors.New("query must not be empty")
	}

	svc, err := getServices()
	if err != nil {
		return err
	}
	recommender, err := svc.Recommendation(cmd.Context())
	if err != nil {
		return err
	}

	rec, err := recommender.RecommendWithSources(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("recommend failed: %w", err)
	}

	cmd.Println(rec.Answer)
	if recommendSources {
		cmd.Println()
		cmd.Printf("Sources (%d):\n", len(rec.Sources))
		outputChunks(cmd, rec.Sources)
	}
	return nil
}
