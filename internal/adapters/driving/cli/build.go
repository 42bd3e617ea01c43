package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/animerec/internal/core/domain"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Normalise the catalog and build the similarity index",
	Long: `Reads the raw catalog, writes the processed catalog, then chunks,
embeds and stores every entry in the similarity index.

Running build again appends to the existing collection.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

var normaliseCmd = &cobra.Command{
	Use:     "normalise",
	Aliases: []string{"normalize"},
	Short:   "Convert the raw catalog into the processed catalog",
	Args:    cobra.NoArgs,
	RunE:    runNormalise,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(normaliseCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	svc, err := getServices()
	if err != nil {
		return err
	}
	builder, err := svc.Builder(cmd.Context())
	if err != nil {
		return err
	}

	report, err := builder.Build(cmd.Context())
	if report != nil {
		printNormaliseReport(cmd, report.Normalise)
	}
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	res := report.Index
	cmd.Printf("Indexed %d chunks from %d documents into %s/%s in %s\n",
		res.Inserted, res.Documents, res.PersistDir, res.Collection, res.Duration.Round(time.Millisecond))
	return nil
}

func runNormalise(cmd *cobra.Command, _ []string) error {
	svc, err := getServices()
	if err != nil {
		return err
	}
	normaliser, err := svc.Normaliser()
	if err != nil {
		return err
	}

	report := normaliser.Normalise(cmd.Context())
	printNormaliseReport(cmd, report)
	if !report.OK() {
		if report.Err == nil {
			return errors.New("normalise failed: no processed catalog written")
		}
		return fmt.Errorf("normalise failed: %w", report.Err)
	}
	return nil
}

func printNormaliseReport(cmd *cobra.Command, r *domain.NormaliseReport) {
	if r == nil {
		return
	}
	cmd.Printf("Catalog: %s\n", r.SourcePath)
	cmd.Printf("  Rows read:      %d\n", r.RowsRead)
	cmd.Printf("  Rows kept:      %d\n", r.RowsKept)
	cmd.Printf("  Rows dropped:   %d\n", r.RowsDropped)
	if r.RowsMalformed > 0 {
		cmd.Printf("  Rows malformed: %d\n", r.RowsMalformed)
	}
	if r.OutputPath != "" {
		cmd.Printf("  Written to:     %s\n", r.OutputPath)
	}
}
