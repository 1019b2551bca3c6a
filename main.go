// l20n2po converts Fluent/L20n localization files into gettext PO/POT files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/minios-linux/l20n2po/config"
	"github.com/minios-linux/l20n2po/convert"
	"github.com/minios-linux/l20n2po/i18n"
	"github.com/minios-linux/l20n2po/logging"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// logger is replaced once flags are parsed.
var logger = zerolog.Nop()

func logInfo(format string, args ...any) {
	logger.Info().Msgf(format, args...)
}

func logSuccess(format string, args ...any) {
	logger.Info().Str("status", "ok").Msgf(format, args...)
}

func logWarning(format string, args ...any) {
	logger.Warn().Msgf(format, args...)
}

func logError(format string, args ...any) {
	logger.Error().Msgf(format, args...)
}

// ---------------------------------------------------------------------------
// Flag values
// ---------------------------------------------------------------------------

// enumValue is a string flag restricted to a fixed set of values.
type enumValue struct {
	value   string
	allowed []string
}

var _ pflag.Value = (*enumValue)(nil)

func newEnumValue(def string, allowed ...string) *enumValue {
	return &enumValue{value: def, allowed: allowed}
}

func (e *enumValue) String() string { return e.value }

func (e *enumValue) Set(s string) error {
	for _, a := range e.allowed {
		if s == a {
			e.value = s
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(e.allowed, ", "))
}

func (e *enumValue) Type() string { return "string" }

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

// convertArgs holds the flags of one command invocation.
type convertArgs struct {
	configPath string
	template   string
	language   string
	pot        bool
	jobs       int
	logLevel   *enumValue
	progress   *enumValue
}

func newRootCmd() *cobra.Command {
	a := &convertArgs{
		logLevel: newEnumValue("info", config.LogLevels...),
		progress: newEnumValue("none", "none", "verbose"),
	}

	root := &cobra.Command{
		Use:   "l20n2po [flags] INPUT [OUTPUT]",
		Short: i18n.T("Convert Fluent/L20n localization files to gettext PO"),
		Long: i18n.T(`Convert Fluent/L20n localization files (.ftl, .l20n) to gettext PO.

INPUT is a source file, a directory, or "-" for standard input.
OUTPUT defaults to standard output for a single file and is required
when INPUT is a directory; files are then written with the same
relative layout and a .po (or .pot) extension.

With --template, translations of a previous PO file (or a directory of
them) are kept for messages whose id is unchanged.`),
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, a, args)
		},
	}

	flags := root.Flags()
	flags.BoolVarP(&a.pot, "pot", "P", false, i18n.T("Output a POT template (no target merge)"))
	flags.StringVarP(&a.template, "template", "t", "", i18n.T("Prior PO translations to carry targets from"))
	flags.StringVarP(&a.configPath, "config", "c", "", i18n.T("Config file (default .l20n2po.yaml if present)"))
	flags.StringVarP(&a.language, "language", "l", "", i18n.T("Language written to the PO header"))
	flags.IntVarP(&a.jobs, "jobs", "j", 0, i18n.T("Parallel conversions in directory mode (0 = CPU count)"))
	flags.Var(a.logLevel, "log-level", i18n.T("Log level: debug, info, warn, error"))
	flags.Var(a.progress, "progress", i18n.T("Progress output: none, verbose"))

	root.AddCommand(newVersionCmd())

	return root
}

func main() {
	i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if logger.GetLevel() == zerolog.Disabled {
			// Flags never parsed; the logger was not set up.
			logger = zerolog.New(logging.ConsoleWriter(os.Stderr))
		}
		logError("%v", err)
		stop()
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "l20n2po version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// convert
// ---------------------------------------------------------------------------

func runConvert(cmd *cobra.Command, a *convertArgs, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return err
	}

	logger, err = logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}

	opts := convert.Options{
		POT:    cfg.POT,
		Header: cfg.HeaderInfo("l20n2po " + version),
		Logger: &logger,
	}
	if cfg.POT && cfg.Template != "" {
		logWarning(i18n.T("Template %s ignored in POT mode"), cfg.Template)
	}

	input := args[0]
	output := "-"
	if len(args) == 2 {
		output = args[1]
	}

	if input != "-" {
		info, err := os.Stat(input)
		if err != nil {
			return fmt.Errorf("input: %w", err)
		}
		if info.IsDir() {
			return runConvertTree(cmd.Context(), cfg, opts, a.progress.String() == "verbose", input, output)
		}
	}

	var res convert.Result
	switch {
	case output == "-":
		res, err = convertToWriter(cmd, cfg, opts, input)
	case input == "-":
		return errors.New(i18n.T("reading standard input requires output to standard output"))
	default:
		res, err = convert.ConvertFile(input, output, templatePath(cfg), opts)
	}
	if err != nil {
		return err
	}

	logSuccess(i18n.T("Converted %s: %d units, %d translations kept"), input, res.Units, res.Carried)
	if n := len(res.Warnings); n > 0 {
		logWarning(i18n.N("%d line skipped", "%d lines skipped", n), n)
	}
	return nil
}

// convertToWriter converts a file or standard input to standard output.
func convertToWriter(cmd *cobra.Command, cfg *config.Config, opts convert.Options, input string) (convert.Result, error) {
	var in io.Reader = cmd.InOrStdin()
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return convert.Result{}, fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	}

	var tmpl io.Reader
	if path := templatePath(cfg); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return convert.Result{}, fmt.Errorf("opening template: %w", err)
		}
		defer f.Close()
		tmpl = f
	}

	return convert.ConvertL20n(in, cmd.OutOrStdout(), tmpl, opts)
}

func runConvertTree(ctx context.Context, cfg *config.Config, opts convert.Options, verbose bool, input, output string) error {
	if output == "-" {
		return errors.New(i18n.T("an output directory is required when the input is a directory"))
	}

	tree := convert.TreeOptions{
		Options:    opts,
		Extensions: cfg.Extensions,
		Jobs:       cfg.Jobs,
	}
	if verbose {
		tree.OnFile = func(rel string, res convert.Result) {
			logInfo(i18n.T("%s: %d units, %d translations kept"), rel, res.Units, res.Carried)
		}
	}

	res, err := convert.ConvertTree(ctx, input, output, templatePath(cfg), tree)
	if err != nil {
		return err
	}

	logSuccess(i18n.N("Converted %d file: %d units, %d translations kept",
		"Converted %d files: %d units, %d translations kept", res.Files), res.Files, res.Units, res.Carried)
	if res.Warnings > 0 {
		logWarning(i18n.N("%d line skipped", "%d lines skipped", res.Warnings), res.Warnings)
	}
	return nil
}

// templatePath returns the template to merge against, or "" in POT mode.
func templatePath(cfg *config.Config) string {
	if cfg.POT {
		return ""
	}
	return cfg.Template
}
