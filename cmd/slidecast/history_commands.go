package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"slidecast/internal/history"
	"slidecast/internal/stageexec"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				views := make([]runView, 0, len(runs))
				for _, run := range runs {
					views = append(views, newRunView(run))
				}
				return writeJSON(cmd, views)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRunTable(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid run id %q", args[0])
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), id)
			if err != nil {
				if errors.Is(err, history.ErrNotFound) {
					return fmt.Errorf("run %d not found", id)
				}
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, newRunView(run))
			}
			printRunDetail(cmd.OutOrStdout(), run)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan string
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete finished runs older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			age, err := parseAge(olderThan)
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now().Add(-age))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d run(s) older than %s\n", removed, olderThan)
			return nil
		},
	}
	cmd.Flags().StringVar(&olderThan, "older-than", "30d", "Minimum age of pruned runs (for example 12h or 30d)")
	return cmd
}

// parseAge accepts time.ParseDuration syntax plus a whole-day "Nd" form.
func parseAge(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid age %q", value)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	age, err := time.ParseDuration(value)
	if err != nil || age < 0 {
		return 0, fmt.Errorf("invalid age %q", value)
	}
	return age, nil
}

type runView struct {
	ID           int64      `json:"id"`
	RunID        string     `json:"run_id"`
	Mode         string     `json:"mode"`
	TextSource   string     `json:"text_source"`
	Voice        string     `json:"voice"`
	Subtitles    bool       `json:"subtitles"`
	SlideCount   int        `json:"slide_count"`
	OutputPath   string     `json:"output_path"`
	SubtitlePath string     `json:"subtitle_path,omitempty"`
	Status       string     `json:"status"`
	Stage        string     `json:"stage,omitempty"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

func newRunView(run *history.Run) runView {
	return runView{
		ID:           run.ID,
		RunID:        run.RunID,
		Mode:         run.Mode,
		TextSource:   run.TextSource,
		Voice:        run.Voice,
		Subtitles:    run.Subtitles,
		SlideCount:   run.SlideCount,
		OutputPath:   run.OutputPath,
		SubtitlePath: run.SubtitlePath,
		Status:       string(run.Status),
		Stage:        run.Stage,
		Error:        run.ErrorMessage,
		CreatedAt:    run.CreatedAt,
		FinishedAt:   run.FinishedAt,
	}
}

func renderRunTable(runs []*history.Run) string {
	headers := []string{"ID", "Created", "Mode", "Voice", "Slides", "Status", "Stage", "Output"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			run.Mode,
			run.Voice,
			strconv.Itoa(run.SlideCount),
			string(run.Status),
			stageLabel(run.Stage),
			run.OutputPath,
		})
	}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight}
	return renderTable(headers, rows, aligns)
}

func printRunDetail(out io.Writer, run *history.Run) {
	fmt.Fprintf(out, "Run %d (%s)\n", run.ID, run.RunID)
	fmt.Fprintf(out, "  Status:     %s\n", run.Status)
	fmt.Fprintf(out, "  Last stage: %s\n", stageLabel(run.Stage))
	fmt.Fprintf(out, "  Mode:       %s\n", run.Mode)
	fmt.Fprintf(out, "  Text:       %s\n", run.TextSource)
	fmt.Fprintf(out, "  Voice:      %s\n", run.Voice)
	fmt.Fprintf(out, "  Subtitles:  %s\n", yesNo(run.Subtitles))
	fmt.Fprintf(out, "  Slides:     %d\n", run.SlideCount)
	fmt.Fprintf(out, "  Output:     %s\n", run.OutputPath)
	if run.SubtitlePath != "" {
		fmt.Fprintf(out, "  SRT:        %s\n", run.SubtitlePath)
	}
	fmt.Fprintf(out, "  Created:    %s\n", run.CreatedAt.Local().Format(time.RFC3339))
	if run.FinishedAt != nil {
		fmt.Fprintf(out, "  Finished:   %s (%s)\n", run.FinishedAt.Local().Format(time.RFC3339), run.Duration().Round(time.Millisecond))
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "  Error:      %s\n", run.ErrorMessage)
	}
}

func stageLabel(stage string) string {
	if strings.TrimSpace(stage) == "" {
		return "-"
	}
	return stageexec.Label(stage)
}
