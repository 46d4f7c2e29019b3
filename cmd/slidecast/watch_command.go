package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"slidecast/internal/pipeline"
	"slidecast/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process job manifests dropped into a hot folder",
		Long: "Watch a directory for .toml or .yaml job manifests and run each one in turn.\n" +
			"Finished manifests are renamed with a .done or .failed suffix and a .log file\n" +
			"holds the job's records. Interrupting the command lets the current job finish.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if dir != "" {
				expanded, err := expandOptional(dir)
				if err != nil {
					return err
				}
				override := *cfg
				override.Watch.Dir = expanded
				cfg = &override
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger, err := ctx.newLogger(cmd)
			if err != nil {
				return err
			}
			defer logger.Close()

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			opts, err := ctx.runOptions(runCtx, cfg, logger.Logger)
			if err != nil {
				return err
			}

			factory := func(jobLogger *slog.Logger) watch.Runner {
				return pipeline.New(cfg, store, jobLogger, opts...)
			}
			watcher := watch.New(cfg, factory, logger.Logger)
			out := cmd.OutOrStdout()
			watcher.OnOutcome = func(outcome watch.Outcome) {
				name := filepath.Base(outcome.Manifest)
				if outcome.Err != nil {
					fmt.Fprintf(out, "%s: failed: %v\n", name, outcome.Err)
					return
				}
				fmt.Fprintf(out, "%s: %s\n", name, outcome.Result.OutputPath)
			}
			fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", watcher.Dir())
			return watcher.Run(runCtx)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to watch (default from config)")
	return cmd
}
