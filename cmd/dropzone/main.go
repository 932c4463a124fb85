package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/dropzone/internal/config"
	"github.com/vango-dev/dropzone/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "dropzone",
		Short: "Single-image upload form served from Go",
		Long: `dropzone serves a drag-and-drop image upload form.

The browser runs a thin client; selection, validation, preview and
submit gating happen on the server over a WebSocket. Accepted images
are JPG or PNG up to the configured size limit (10MB by default).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.ConfigFileName, "Path to the configuration file")

	load := func(cmd *cobra.Command) (*config.Config, error) {
		return config.Resolve(configPath, cmd.Flags().Changed("config"))
	}

	rootCmd.AddCommand(
		serveCmd(load),
		checkCmd(load),
		configCmd(load),
		versionCmd(),
	)
	return rootCmd
}

// loadFunc resolves the effective configuration for a command.
type loadFunc func(cmd *cobra.Command) (*config.Config, error)

// newLogger builds the process logger from the log settings.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

func failure(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
