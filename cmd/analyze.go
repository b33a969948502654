package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"factcheck/config"
	"factcheck/logger"
	"factcheck/models"
	"factcheck/services"

	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	text    string
	url     string
	file    string
	jsonOut bool
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one text, link or media file and print the report",
		Args:  cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, args []string) {
			// keep stdout for the report
			logger.Instance.SetOutput(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			normalizer, analyzer, err := newServices(cfg)
			if err != nil {
				return err
			}
			return runAnalyze(cmd, normalizer, analyzer, opts)
		},
	}

	cmd.Flags().StringVar(&opts.text, "text", "", "statement to verify")
	cmd.Flags().StringVar(&opts.url, "url", "", "link to a platform video, media file or article")
	cmd.Flags().StringVar(&opts.file, "file", "", "path to an image or video")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the report as JSON")
	cmd.MarkFlagsMutuallyExclusive("text", "url", "file")
	cmd.MarkFlagsOneRequired("text", "url", "file")

	return cmd
}

func runAnalyze(cmd *cobra.Command, normalizer *services.Normalizer, analyzer *services.AnalyzerService, opts analyzeOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	payload, err := normalizeInput(ctx, normalizer, opts)
	if err != nil {
		return err
	}

	session := models.NewSession()
	if err := session.Begin(payload); err != nil {
		return err
	}

	report, err := analyzer.Analyze(ctx, payload)
	if err != nil {
		if ferr := session.Fail(err.Error()); ferr != nil {
			return ferr
		}
		return errors.New(session.Message())
	}
	if err := session.Complete(report); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(models.AnalysisResponse{
			Submission:         *session.Payload(),
			VerificationReport: session.Report(),
		})
	}
	_, err = fmt.Fprintln(out, services.FormatReport(*session.Payload(), session.Report()))
	return err
}

func normalizeInput(ctx context.Context, normalizer *services.Normalizer, opts analyzeOptions) (models.SubmissionPayload, error) {
	switch {
	case opts.file != "":
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return models.SubmissionPayload{}, fmt.Errorf("read %s: %w", opts.file, err)
		}
		return normalizer.NormalizeUpload(data, mime.TypeByExtension(filepath.Ext(opts.file)), filepath.Base(opts.file))
	case opts.url != "":
		return normalizer.NormalizeURL(ctx, opts.url)
	default:
		return normalizer.NormalizeText(opts.text)
	}
}
