// Package cli provides the command-line interface for cvchat.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cvforge/cvchat/internal/auth"
	"github.com/cvforge/cvchat/internal/client"
	"github.com/cvforge/cvchat/internal/config"
	"github.com/cvforge/cvchat/internal/download"
	"github.com/cvforge/cvchat/internal/i18n"
	"github.com/cvforge/cvchat/internal/metrics"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and collaborators, built once per invocation
	cfg          config.Config
	logger       *slog.Logger
	catalog      *i18n.Catalog
	collector    *metrics.Collector
	authProvider *auth.Provider
	apiClient    *client.Client
	downloads    *download.Writer
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cvchat",
	Short: "Chat with your CV Studio assistant",
	Long: `cvchat is a terminal chat client for the CV Studio API.

Converse with the assistant in natural language and issue commands against
your CV: generate it as a PDF, rewrite a profile section, or fetch stored
files - all from one chat prompt.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := cfg.Level()
		if verbose {
			level = slog.LevelDebug
		}
		// The chat view owns the terminal; keep its logs file-only.
		logger = config.SetupLogger(cfg.LogFile, level, cmd.Name() != "chat")

		catalog, err = i18n.New(cfg.Locale, cfg.LocaleFile)
		if err != nil {
			return fmt.Errorf("load string catalog: %w", err)
		}

		collector = metrics.NewCollector()
		authProvider = auth.NewProvider(cfg.APIURL, cfg.Email, cfg.Password, cfg.APITimeout, collector)
		apiClient = client.New(cfg.APIURL, cfg.APITimeout, authProvider.Token, collector)
		downloads = download.NewWriter(cfg.DownloadDir, apiClient, collector)

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(fetchCmd)
}
