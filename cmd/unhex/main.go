package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"unhex/internal/convert"
	"unhex/internal/ctxlog"
	"unhex/internal/db"
	"unhex/internal/rec"
	"unhex/internal/report"
)

var (
	errInvalidLiteral = errors.New("input is not valid hex")
	errInputDir       = errors.New("is a directory, not a file")
)

type globalFlags struct {
	config  string
	verbose bool
	dbFile  string
}

// setup loads the config, applies global flags and installs the logger.
func setup(cmd *cobra.Command, g *globalFlags) (context.Context, Config, io.Closer, error) {
	ctx := cmd.Context()

	filename := g.config
	explicit := cmd.Flags().Changed("config")

	config, err := LoadConfig(ctx, filename, explicit)
	if err != nil {
		return ctx, Config{}, nil, fmt.Errorf("config: %w", err)
	}

	if g.verbose {
		config.Log.Stderr = true
		config.Log.Debug = true
	}
	if cmd.Flags().Changed("db") {
		config.DB.File = g.dbFile
	}

	ctx, closer, err := ctxlog.Setup(ctx, "unhex", config.Log)
	if err != nil {
		return ctx, Config{}, nil, fmt.Errorf("log: %w", err)
	}
	return ctx, config, closer, nil
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	var (
		input       string
		output      string
		wrappedOnly bool
		noColor     bool
		noHints     bool
		fallback    bool
		noHistory   bool
	)

	cmd := &cobra.Command{
		Use:   "unhex",
		Short: "Decode hashcat $HEX[...] potfile entries to text",
		Example: "  unhex -i hashcat.potfile -o decoded.txt\n" +
			"  unhex -i '$HEX[5061737377c3b67264]'",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			defer rec.Error(&err)

			ctx, config, logCloser, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer ctxlog.Close(ctx, "log file", logCloser)

			if cmd.Flags().Changed("wrapped-only") {
				config.Decode.WrappedOnly = wrappedOnly
			}
			if noColor {
				config.Report.Color = false
			}
			if noHints {
				config.Report.Hints = false
			}
			if fallback {
				config.Report.Fallback = true
			}
			if noHistory {
				config.DB.File = ""
			}

			return run(ctx, config, input, output, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&g.config, "config", defaultConfigFile, "YAML config file")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log to stderr at debug level")
	cmd.PersistentFlags().StringVar(&g.dbFile, "db", "", "run history database (overrides db.file)")

	cmd.Flags().StringVarP(&input, "input", "i", "", "input file, or a literal $HEX[...] or hex string (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (required for file input; literal input prints to stdout if omitted)")
	cmd.Flags().BoolVar(&wrappedOnly, "wrapped-only", false, "only decode $HEX[...] lines, pass unwrapped lines through")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored reports")
	cmd.Flags().BoolVar(&noHints, "no-hints", false, "do not print hints for invalid lines")
	cmd.Flags().BoolVar(&fallback, "report-fallback", false, "report lines decoded with the Latin-1 fallback")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record this run in the history database")

	_ = cmd.MarkFlagRequired("input")

	cmd.AddCommand(historyCmd(g))
	cmd.AddCommand(serveCmd(g))

	return cmd
}

func run(ctx context.Context, config Config, input, output string, stdout, stderr io.Writer) error {
	logger := ctxlog.Get(ctx)

	opts := convert.Options{
		Decode:   config.Decode,
		Reporter: report.NewConsole(stderr, config.Report),
	}

	kind := convert.Classify(input)
	logger.Debug("classified input", "input", input, "kind", kind.String())

	switch kind {
	case convert.MissingFile:
		return fmt.Errorf("input file %q: %w", input, fs.ErrNotExist)

	case convert.Directory:
		return fmt.Errorf("input %q: %w", input, errInputDir)

	case convert.LiteralInput:
		o := convert.Literal(input, opts)
		if !o.OK() {
			return errInvalidLiteral
		}
		if output == "" {
			_, err := fmt.Fprintln(stdout, o.Text)
			return err
		}
		if err := os.WriteFile(output, []byte(o.Text+"\n"), 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(stderr, "Decoded output written to %q\n", output)
		return nil
	}

	if output == "" {
		return fmt.Errorf("--output is required when --input is a file")
	}

	started := time.Now()
	stats, err := convert.File(ctx, input, output, opts)
	if config.DB.File != "" {
		recordRun(ctx, config.DB, db.Run{
			Started:  started,
			Duration: time.Since(started),
			Input:    input,
			Output:   output,
			Stats:    stats,
			Error:    errString(err),
		})
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(stderr, "%s\nDecoded output written to %q\n", stats, output)
	return nil
}

// recordRun stores run in the history. Failures are logged, not returned,
// so a broken history file never fails a conversion.
func recordRun(ctx context.Context, config db.Config, run db.Run) {
	logger := ctxlog.Get(ctx)

	err := func() (err error) {
		defer rec.Error(&err)

		db.Open(config)
		defer ctxlog.Close(ctx, "db", db.Closer())

		id, err := db.AddRun(run)
		if err != nil {
			return err
		}
		logger.Debug("recorded run", "id", id)
		return nil
	}()
	if err != nil {
		logger.Error("failed to record run", "error", err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}
