package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"slidecast/internal/config"
	"slidecast/internal/pipeline"
	"slidecast/internal/publish"
	"slidecast/internal/services"
)

// requestFlags are shared by generate and audio.
type requestFlags struct {
	pdf            string
	script         string
	notes          string
	marker         string
	offline        bool
	voice          string
	subtitles      bool
	name           string
	output         string
	subtitleOutput string
	jsonOutput     bool
}

func (f *requestFlags) bindText(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.script, "script", "", "Narration script with one block per slide")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Presentation deck whose speaker notes narrate each slide")
	cmd.Flags().StringVar(&f.marker, "marker", "", "Slide boundary marker in the script (default from config)")
	cmd.Flags().BoolVar(&f.offline, "offline", false, "Use the local offline voice instead of the production voice")
	cmd.Flags().StringVar(&f.voice, "voice", "", "Production voice name (see 'slidecast voices')")
	cmd.Flags().StringVar(&f.name, "name", "", "Deliverable name used to derive default output paths")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Explicit output path")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Print the run result as JSON")
	cmd.MarkFlagsMutuallyExclusive("script", "notes")
	cmd.MarkFlagsOneRequired("script", "notes")
	cmd.MarkFlagsMutuallyExclusive("offline", "voice")
	cmd.MarkFlagsMutuallyExclusive("name", "output")
}

func (f *requestFlags) request(cfg *config.Config, mode pipeline.Mode) (pipeline.Request, error) {
	req := pipeline.Request{
		Mode:      mode,
		Marker:    strings.TrimSpace(f.marker),
		Subtitles: f.subtitles,
	}

	var err error
	if req.PDFPath, err = expandOptional(f.pdf); err != nil {
		return req, err
	}
	if req.ScriptPath, err = expandOptional(f.script); err != nil {
		return req, err
	}
	if req.NotesPath, err = expandOptional(f.notes); err != nil {
		return req, err
	}
	if req.OutputPath, err = expandOptional(f.output); err != nil {
		return req, err
	}
	if req.SubtitlePath, err = expandOptional(f.subtitleOutput); err != nil {
		return req, err
	}

	req.TextSource = pipeline.TextSourceScript
	if req.NotesPath != "" {
		req.TextSource = pipeline.TextSourceNotes
	}

	if f.offline {
		req.Voice = pipeline.VoiceOffline
	} else {
		req.Voice = pipeline.VoiceProduction
		req.VoiceName = strings.TrimSpace(f.voice)
		if req.VoiceName == "" {
			req.VoiceName = cfg.OpenAI.Voice
		}
	}

	name := strings.TrimSpace(f.name)
	if name == "" && req.OutputPath != "" {
		name = strings.TrimSuffix(filepath.Base(req.OutputPath), filepath.Ext(req.OutputPath))
	}
	req.DefaultOutputs(cfg, name)
	return req, nil
}

func expandOptional(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	expanded, err := config.ExpandPath(value)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "request", "expand path", value, err)
	}
	return expanded, nil
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var flags requestFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a narrated video from a PDF and a script or deck notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runRequest(cmd, &flags, pipeline.ModeVideo)
		},
	}
	cmd.Flags().StringVar(&flags.pdf, "pdf", "", "Slide deck exported as PDF")
	cmd.Flags().BoolVar(&flags.subtitles, "subtitles", false, "Transcribe the narration and burn subtitles into the video")
	cmd.Flags().StringVar(&flags.subtitleOutput, "subtitle-output", "", "Explicit SRT output path")
	flags.bindText(cmd)
	_ = cmd.MarkFlagRequired("pdf")
	return cmd
}

func newAudioCommand(ctx *commandContext) *cobra.Command {
	var flags requestFlags
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Render a narration track from a script or deck notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runRequest(cmd, &flags, pipeline.ModeAudio)
		},
	}
	flags.bindText(cmd)
	return cmd
}

func (c *commandContext) runRequest(cmd *cobra.Command, flags *requestFlags, mode pipeline.Mode) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	req, err := flags.request(cfg, mode)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := c.newLogger(cmd)
	if err != nil {
		return err
	}
	defer logger.Close()

	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := c.runOptions(runCtx, cfg, logger.Logger)
	if err != nil {
		return err
	}

	result, runErr := pipeline.New(cfg, store, logger.Logger, opts...).Run(runCtx, req)
	if runErr != nil {
		if errors.Is(runCtx.Err(), context.Canceled) {
			return context.Canceled
		}
		return runErr
	}
	if flags.jsonOutput {
		return writeJSON(cmd, runResultJSON(result))
	}
	printRunResult(cmd.OutOrStdout(), result)
	return nil
}

// runOptions wires the optional publisher ahead of the caller options so
// tests can replace it.
func (c *commandContext) runOptions(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]pipeline.Option, error) {
	var opts []pipeline.Option
	if cfg.Publish.Enabled {
		publisher, err := publish.New(ctx, cfg.Publish, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithUploader(publisher))
	}
	return append(opts, c.pipelineOptions...), nil
}
