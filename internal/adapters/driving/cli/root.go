// Package cli provides the cobra command tree for animerec.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/animerec/internal/core/ports/driving"
	"github.com/custodia-labs/animerec/internal/logger"
)

// defaultEnvFile is loaded when present and --env-file is not given.
const defaultEnvFile = ".env"

// version is set at build time.
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	jsonLogs  bool
	configDir string
	envFile   string
)

// Options carries the persistent flags to the bootstrap function.
type Options struct {
	ConfigDir string
	EnvFile   string
}

// Services builds the core services on first use. Index and provider
// access is deferred so commands such as build and settings do not need a
// ready index.
type Services interface {
	Settings() (driving.SettingsService, error)
	Normaliser() (driving.NormaliseService, error)
	Builder(ctx context.Context) (driving.BuildService, error)
	Retrieval(ctx context.Context) (driving.RetrievalService, error)
	Recommendation(ctx context.Context) (driving.RecommendationService, error)
	Close() error
}

// BootstrapFunc creates Services once the persistent flags are parsed.
type BootstrapFunc func(opts Options) (Services, error)

var (
	bootstrap BootstrapFunc
	services  Services
)

// ErrServicesNotConfigured is returned when no bootstrap was registered.
var ErrServicesNotConfigured = errors.New("services not configured")

var rootCmd = &cobra.Command{
	Use:   "animerec",
	Short: "Anime recommendations grounded in a local catalog",
	Long: `animerec builds a similarity index over an anime catalog and answers
free-text requests with recommendations grounded in the closest entries.

Typical workflow:
  animerec build                          # normalise the catalog and index it
  animerec recommend "a calm slice of life show"
  animerec tui                            # interactive mode`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&jsonLogs, "json-logs", false, "write logs as JSON")
	flags.StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.animerec)")
	flags.StringVar(&envFile, "env-file", "", "dotenv file with provider keys (default .env when present)")
}

// SetBootstrap registers the function that builds services.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices injects ready-made services, bypassing the bootstrap.
func SetServices(s Services) {
	services = s
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetJSON(jsonLogs)
	logger.SetVerbose(verbose)
	return loadEnvFile(envFile)
}

// loadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing default file is ignored.
func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading env file %s: %w", path, err)
		}
		logger.Debug("loaded environment from %s", path)
		return nil
	}

	if err := godotenv.Load(defaultEnvFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", defaultEnvFile, err)
	}
	logger.Debug("loaded environment from %s", defaultEnvFile)
	return nil
}

// getServices returns the injected services or builds them on first use.
func getServices() (Services, error) {
	if services != nil {
		return services, nil
	}
	if bootstrap == nil {
		return nil, ErrServicesNotConfigured
	}
	s, err := bootstrap(Options{ConfigDir: configDir, EnvFile: envFile})
	if err != nil {
		return nil, err
	}
	services = s
	return services, nil
}

func closeServices() {
	if services == nil {
		return
	}
	if err := services.Close(); err != nil {
		logger.Warn("closing services: %v", err)
	}
}
