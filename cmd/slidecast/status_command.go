package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"slidecast/internal/config"
	"slidecast/internal/deps"
	"slidecast/internal/preflight"
)

type statusCheckView struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Path     string `json:"path,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

type statusView struct {
	ConfigPath   string            `json:"config_path"`
	Dependencies []statusCheckView `json:"dependencies"`
	Checks       []statusCheckView `json:"checks"`
	Ready        bool              `json:"ready"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var checkAPI bool
	var strict bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report external tools, directories, and credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			view := collectStatus(cmd, cfg, ctx.configPath, checkAPI)
			if jsonOutput {
				if err := writeJSON(cmd, view); err != nil {
					return err
				}
			} else {
				printStatus(cmd, view)
			}
			if strict && !view.Ready {
				return errors.New("required dependencies are missing")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&checkAPI, "check-api", false, "Also call the OpenAI API to verify the key")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when a required dependency is missing")
	return cmd
}

func collectStatus(cmd *cobra.Command, cfg *config.Config, configPath string, checkAPI bool) statusView {
	view := statusView{ConfigPath: configPath}

	statuses := preflight.CheckSystemDeps(cfg)
	for _, s := range statuses {
		view.Dependencies = append(view.Dependencies, statusCheckView{
			Name:     s.Name,
			Passed:   s.Available,
			Optional: s.Optional,
			Path:     s.Path,
			Detail:   s.Detail,
		})
	}
	view.Ready = len(deps.Missing(statuses)) == 0

	results := preflight.RunAll(cmd.Context(), cfg)
	if checkAPI {
		results = append(results, preflight.CheckOpenAI(cmd.Context(), cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey))
	}
	for _, r := range results {
		view.Checks = append(view.Checks, statusCheckView{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	return view
}

func printStatus(cmd *cobra.Command, view statusView) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	if view.ConfigPath != "" {
		fmt.Fprintf(out, "Config: %s\n\n", view.ConfigPath)
	}
	fmt.Fprintln(out, renderSectionHeader("Dependencies", colorize))
	for _, dep := range view.Dependencies {
		kind := statusOK
		detail := dep.Path
		switch {
		case !dep.Passed && dep.Optional:
			kind, detail = statusWarn, dep.Detail+" (optional)"
		case !dep.Passed:
			kind, detail = statusError, dep.Detail
		}
		fmt.Fprintln(out, renderStatusLine(dep.Name, kind, detail, colorize))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSectionHeader("Checks", colorize))
	for _, check := range view.Checks {
		kind := statusOK
		if !check.Passed {
			kind = statusWarn
		}
		fmt.Fprintln(out, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Ready to render: %s\n", yesNo(view.Ready))
}
