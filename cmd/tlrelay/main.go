// Command tlrelay translates text and markup through a size-limited
// machine translation provider with LLM failover.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ZaguanLabs/tlrelay"
	"github.com/ZaguanLabs/tlrelay/config"
	"github.com/ZaguanLabs/tlrelay/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = tlrelay.Version
	commit    = tlrelay.GitCommit
	buildDate = tlrelay.BuildDate
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts := &rootOptions{}
	defer opts.close()

	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}

// rootOptions holds the persistent flags and what they resolve to.
type rootOptions struct {
	configPath string
	logLevel   string
	logFile    string
	envFile    string

	cfg     *config.Config
	logger  *slog.Logger
	logSink *os.File
}

func (o *rootOptions) close() {
	if o.logSink != nil {
		_ = o.logSink.Close()
	}
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   tlrelay.Name,
		Short: tlrelay.Description,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = versionString()
	cmd.SetVersionTemplate("{{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Config file (default: $TLRELAY_CONFIG or ./tlrelay.yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default: from config)")
	pf.StringVar(&opts.logFile, "log-file", "", "Also write JSONL logs to this file")
	pf.StringVar(&opts.envFile, "env-file", ".env", "Environment file loaded before the config")

	cmd.AddCommand(
		newTranslateCmd(opts),
		newChunkCmd(opts),
		newLanguagesCmd(opts),
		newVersionCmd(),
	)

	return cmd
}

// setup loads the environment file, the config and the logger.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", o.envFile, err)
		}
	}

	cfg, err := config.Load(config.ResolvePath(o.configPath))
	if err != nil {
		return err
	}
	o.cfg = cfg

	level := cfg.Log.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	logPath := cfg.Log.File
	if o.logFile != "" {
		logPath = o.logFile
	}

	var sink io.Writer
	if logPath != "" {
		f, err := os.OpenFile(filepath.Clean(logPath), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		o.logSink = f
		sink = f
	}

	o.logger = logger.InitWriter(cmd.ErrOrStderr(), logger.ParseLevel(level), sink)
	return nil
}

func versionString() string {
	s := fmt.Sprintf("%s %s", tlrelay.Name, version)
	if commit != "unknown" && commit != "" {
		s += fmt.Sprintf("\n  commit:  %s", commit)
	}
	if buildDate != "unknown" && buildDate != "" {
		s += fmt.Sprintf("\n  built:   %s", buildDate)
	}
	return s
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		// No config needed.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}

// readInput reads the single optional file argument, or stdin.
func readInput(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	path := args[0]
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return "", "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), filepath.Base(path), nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 - output is user content
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
