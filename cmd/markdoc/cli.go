package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"markdoc/internal/api"
	"markdoc/internal/config"
	"markdoc/internal/convert"
	"markdoc/internal/pipeline"
)

// Version is stamped at build time.
var Version = "dev"

const rootLongDesc = `
markdoc converts a source file with numbered-section docstrings (Title,
Parameters, Attributes, Returns, Examples, Notes) into a Markdown document
with section headings, parameter tables and fenced example code, ready for a
static documentation site.

With an output path the document is written there; without one it goes to
stdout. The serve subcommand runs the same conversion behind an HTTP API.
`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "markdoc <input.py> [output.md]",
		Short:         "Convert docstrings to Markdown",
		Long:          strings.TrimSpace(rootLongDesc),
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Version = Version

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		in := args[0]
		out := ""
		if len(args) == 2 {
			out = args[1]
		}
		log := slog.New(slog.NewTextHandler(os.Stderr, nil))
		c := convert.New(in, out, log)
		if err := c.Run(); err != nil {
			return err
		}
		if out == "" {
			fmt.Fprint(cmd.OutOrStdout(), c.Markdown())
		}
		return nil
	}

	cmd.AddCommand(newServeCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Run the conversion HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file (env vars take precedence)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

		var cfg config.Config
		if configPath != "" {
			var err error
			cfg, err = config.LoadFile(configPath)
			if err != nil {
				return err
			}
		} else {
			cfg = config.Load()
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		orch := pipeline.NewOrchestrator(cfg.WorkerCount, cfg.MaxQueueSize, cfg.JobTTL, log)
		orch.Start(ctx)

		srv := api.NewServer(orch, log, cfg)
		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown.
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh
			log.Info("shutting down...")

			orch.Stop()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		log.Info("starting markdoc server", "port", cfg.Port, "workers", cfg.WorkerCount)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
	return cmd
}
