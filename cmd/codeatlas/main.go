// Command codeatlas serves structured code-graph queries over MCP stdio.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codeatlas/internal/archive"
	"codeatlas/internal/cache"
	"codeatlas/internal/ingest"
	"codeatlas/internal/jqeval"
	"codeatlas/internal/query"
	"codeatlas/internal/server"
)

const version = "0.3.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "codeatlas",
		Short:        "Structured queries over an analyzed codebase graph",
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd(), loadCmd(), versionCmd())
	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query catalog over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(viper.GetString("log-level"))
			if err != nil {
				return err
			}
			defer log.Sync()

			store, err := cache.New(viper.GetInt("cache-capacity"))
			if err != nil {
				return fmt.Errorf("initializing cache: %w", err)
			}

			var arc query.Archive
			if path := viper.GetString("archive"); path != "" {
				sqlArc, err := archive.Open(path)
				if err != nil {
					return fmt.Errorf("opening snapshot archive: %w", err)
				}
				defer sqlArc.Close()
				arc = sqlArc
				log.Info("snapshot archive enabled", zap.String("path", path))
			}

			dispatcher := query.NewDispatcher(store, arc, jqeval.New())
			return server.New(dispatcher, version, log).Run(cmd.Context())
		},
	}

	cmd.Flags().Int("cache-capacity", cache.DefaultCapacity, "maximum number of cached graph indexes")
	cmd.Flags().String("archive", "", "path to the sqlite snapshot archive (empty disables archiving)")
	cmd.Flags().String("log-level", "info", "log level: debug, info, warn, error")

	viper.SetEnvPrefix("CODEATLAS")
	viper.AutomaticEnv()
	viper.BindPFlags(cmd.Flags())

	return cmd
}

func loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <file-or-url>",
		Short: "Fetch a raw graph snapshot and archive it under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archivePath, _ := cmd.Flags().GetString("archive")
			key, _ := cmd.Flags().GetString("key")

			snap, digest, err := ingest.New().Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if key == "" {
				key = digest
			}

			arc, err := archive.Open(archivePath)
			if err != nil {
				return fmt.Errorf("opening snapshot archive: %w", err)
			}
			defer arc.Close()

			if err := arc.Save(cmd.Context(), key, snap); err != nil {
				return fmt.Errorf("archiving snapshot: %w", err)
			}

			fmt.Printf("archived %d nodes and %d relationships under key %s\n",
				len(snap.Nodes), len(snap.Relationships), key)
			return nil
		},
	}

	cmd.Flags().String("archive", "codeatlas.db", "path to the sqlite snapshot archive")
	cmd.Flags().String("key", "", "idempotency key (defaults to the snapshot digest)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the codeatlas version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

// newLogger builds a stderr logger. Stdout carries the MCP wire protocol
// and must stay clean.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
