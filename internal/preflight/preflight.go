package preflight

import (
	"context"

	"slidecast/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Workspace parent", parentDir(cfg.Paths.WorkspaceDir)),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}

	if cfg.Paths.SubtitleDir != "" {
		results = append(results, CheckDirectoryAccess("Subtitle directory", cfg.Paths.SubtitleDir))
	}

	results = append(results, CheckOpenAIKey(cfg.OpenAI.APIKey))

	if cfg.Publish.Enabled {
		results = append(results, CheckPublish(cfg.Publish))
	}

	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
