package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ZaguanLabs/tlrelay"
	"github.com/ZaguanLabs/tlrelay/config"
	"github.com/spf13/cobra"
)

type translateOptions struct {
	lang        string
	output      string
	jsonOut     bool
	content     bool
	concurrency int
	timeout     time.Duration
}

func newTranslateCmd(root *rootOptions) *cobra.Command {
	opts := translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate [file]",
		Short: "Translate text or HTML (reads stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args, root, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.lang, "lang", "l", "", "Target locale (e.g., es-ES, ja-JP)")
	f.StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")
	f.BoolVar(&opts.jsonOut, "json", false, "Print the result with status and counters as JSON")
	f.BoolVar(&opts.content, "content", false, "Input is a JSON content object; its \"text\" field is translated")
	f.IntVar(&opts.concurrency, "concurrency", 0, "Text tokens translated at once (default: from config)")
	f.DurationVar(&opts.timeout, "timeout", 0, "Abort after this long, keeping untranslated text (0 = no limit)")
	return cmd
}

// translateOutput is the --json shape.
type translateOutput struct {
	*tlrelay.Result
	Input     string `json:"input"`
	Target    string `json:"target"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

func runTranslate(cmd *cobra.Command, args []string, root *rootOptions, opts *translateOptions) error {
	if strings.TrimSpace(opts.lang) == "" {
		_ = cmd.Usage()
		return fmt.Errorf("--lang is required")
	}

	input, inputName, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	cfg := *root.cfg
	if opts.concurrency > 0 {
		cfg.Limits.Concurrency = opts.concurrency
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	svc, err := config.Build(ctx, &cfg, root.logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	if opts.content {
		return translateContent(ctx, cmd, svc.Pipeline, input, opts)
	}

	start := time.Now()
	res := svc.Pipeline.TranslateResult(ctx, input, opts.lang)
	elapsed := time.Since(start)

	if res.Status == tlrelay.StatusPartial {
		root.logger.Warn("some text was left untranslated",
			"file", inputName,
			"primary_failures", res.Stats.PrimaryFailures,
			"fallback_failures", res.Stats.FallbackFailures,
		)
	}

	if !opts.jsonOut {
		return writeOutput(cmd, opts.output, []byte(res.Text))
	}

	data, err := json.MarshalIndent(translateOutput{
		Result:    res,
		Input:     inputName,
		Target:    opts.lang,
		ElapsedMs: elapsed.Milliseconds(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(cmd, opts.output, append(data, '\n'))
}

func translateContent(ctx context.Context, cmd *cobra.Command, p *tlrelay.Pipeline, input string, opts *translateOptions) error {
	var content map[string]any
	if err := json.Unmarshal([]byte(input), &content); err != nil {
		return fmt.Errorf("parsing content object: %w", err)
	}

	out := p.TranslateContent(ctx, content, opts.lang)

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(cmd, opts.output, append(data, '\n'))
}
