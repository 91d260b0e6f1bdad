package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/tlrelay"
	"github.com/spf13/cobra"
)

type chunkOptions struct {
	max     int
	limit   int
	jsonOut bool
	verbose bool
}

func newChunkCmd(root *rootOptions) *cobra.Command {
	opts := chunkOptions{}
	cmd := &cobra.Command{
		Use:   "chunk [file]",
		Short: "Show how input would be chunked, without calling any provider",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChunk(cmd, args, root, &opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.max, "max", 0, "Chunk size in characters (default: from config)")
	f.IntVar(&opts.limit, "limit", tlrelay.DefaultMaxAllowed, "Hard provider limit chunks are checked against")
	f.BoolVar(&opts.jsonOut, "json", false, "Output the report as JSON")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Print each chunk's text")
	return cmd
}

// chunkJSON is the --json shape of one chunk.
type chunkJSON struct {
	Index     int    `json:"index"`
	Token     int    `json:"token"`
	Chars     int    `json:"chars"`
	Sentences int    `json:"sentences"`
	Status    string `json:"status"`
	Text      string `json:"text,omitempty"`
}

type chunkReportJSON struct {
	Input      string              `json:"input"`
	TextTokens int                 `json:"text_tokens"`
	MaxChunk   int                 `json:"max_chunk_size"`
	Report     tlrelay.ChunkReport `json:"report"`
	Chunks     []chunkJSON         `json:"chunks"`
}

func runChunk(cmd *cobra.Command, args []string, root *rootOptions, opts *chunkOptions) error {
	input, inputName, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	splitter, err := root.cfg.Splitter()
	if err != nil {
		return err
	}
	size := root.cfg.Limits.MaxChunkSize
	if opts.max > 0 {
		size = opts.max
	}

	var tokens []tlrelay.Token
	if tlrelay.HasMarkup(input) {
		tokens = tlrelay.Tokenize(input)
	} else {
		tokens = []tlrelay.Token{{Kind: tlrelay.KindText, Content: input}}
	}
	texts := tlrelay.TextTokens(tokens)

	var all []tlrelay.Chunk
	var rows []chunkJSON
	for ti, tok := range texts {
		for _, c := range tlrelay.ChunkText(splitter, strings.TrimSpace(tok.Content), size) {
			c.Index = len(all)
			all = append(all, c)

			row := chunkJSON{
				Index:     c.Index,
				Token:     ti,
				Chars:     c.CharCount,
				Sentences: c.SentenceCount,
				Status:    c.Status.String(),
			}
			if opts.verbose {
				row.Text = c.Text
			}
			rows = append(rows, row)
		}
	}

	report := tlrelay.ValidateChunks(all, opts.limit)
	out := cmd.OutOrStdout()

	if opts.jsonOut {
		data, err := json.MarshalIndent(chunkReportJSON{
			Input:      inputName,
			TextTokens: len(texts),
			MaxChunk:   size,
			Report:     report,
			Chunks:     rows,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	} else {
		fmt.Fprintf(out, "%s: %d text tokens, chunk size %d\n", inputName, len(texts), size)
		fmt.Fprint(out, report.Summary())
		if opts.verbose {
			for _, c := range all {
				fmt.Fprintf(out, "--- #%d\n%s\n", c.Index+1, c.Text)
			}
		}
	}

	if !report.Valid {
		return fmt.Errorf("%d chunks exceed the %d character limit", len(report.Violations), report.MaxAllowed)
	}
	return nil
}
