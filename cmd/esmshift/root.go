package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gnana997/esmshift/pkg/parser"
	"github.com/gnana997/esmshift/pkg/transform"
	"github.com/gnana997/esmshift/pkg/util"
	"github.com/gnana997/esmshift/pkg/verify"
)

// app carries the global flags, the loaded project config and the I/O
// streams shared by every command.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	target     string
	lang       string
	strict     bool
	verify     bool
	logLevel   string

	cfg    *ProjectConfig
	logger *slog.Logger
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "esmshift [FILE]",
		Short: "Rewrite ES module imports to require() or await import()",
		Long: `esmshift rewrites top-level ES module import declarations into CommonJS
require() calls or awaited dynamic import() expressions. With the require
target the first export declaration is expanded into module.exports
assignments. Everything else is printed back exactly as written.

With no FILE, or when FILE is -, the source is read from stdin. The result
is written to stdout.

Examples:
  esmshift src/index.js
  esmshift --target import < module.mjs
  esmshift dir src --out dist-cjs
  esmshift inspect src/app.ts`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runConvert,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "project config file (default "+defaultConfigPath+")")
	flags.StringVar(&a.target, "target", "require", "module form to produce: require or import")
	flags.StringVar(&a.lang, "lang", "", "source language: javascript, typescript or tsx (default: from the file extension)")
	flags.BoolVar(&a.strict, "strict", false, "fail on export declarations that cannot be converted")
	flags.BoolVar(&a.verify, "verify", false, "re-parse converted code and fail if it is invalid")
	flags.StringVar(&a.logLevel, "log-level", string(util.LevelWarn), "log level: debug, info, warn or error")

	root.AddCommand(
		newDirCmd(a),
		newWatchCmd(a),
		newInspectCmd(a),
		newServeCmd(a),
		newSetupCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads the project config and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadProjectConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := util.ParseLogLevel(pick(a.logLevel, cmd.Flags().Changed("log-level"), cfg.LogLevel))
	if err != nil {
		return err
	}
	a.logger = util.NewLogger(util.LoggerConfig{
		Level:  level,
		Format: util.FormatText,
		Output: a.stderr,
	})
	slog.SetDefault(a.logger)
	return nil
}

// options resolves transform options for path. The returned bool reports
// whether the language was chosen explicitly rather than from the extension.
func (a *app) options(cmd *cobra.Command, path string) (transform.Options, bool, error) {
	target, err := transform.ParseTarget(pick(a.target, cmd.Flags().Changed("target"), a.cfg.Target))
	if err != nil {
		return transform.Options{}, false, err
	}

	strict := a.cfg.Strict
	if cmd.Flags().Changed("strict") {
		strict = a.strict
	}
	opts := transform.Options{Target: target, Strict: strict}

	name := pick(a.lang, cmd.Flags().Changed("lang"), a.cfg.Language)
	if name != "" {
		lang := parser.ParseLanguageString(name)
		if lang == parser.LanguageUnknown {
			return transform.Options{}, false, fmt.Errorf("unknown language %q (want javascript, typescript or tsx)", name)
		}
		opts.Language = lang
		return opts, true, nil
	}

	if lang := parser.DetectLanguage(path); lang != parser.LanguageUnknown {
		opts.Language = lang
	}
	return opts, false, nil
}

// newTransformer returns a transformer backed by a parser pool of the given
// size, and the function that releases the pool.
func (a *app) newTransformer(poolSize int) (*transform.Transformer, func()) {
	pm := parser.NewParserManagerWithPoolSize(poolSize, a.logger)
	return transform.New(pm, a.logger), func() {
		if err := pm.Close(); err != nil {
			a.logger.Warn("failed to close parser pool", "error", err)
		}
	}
}

func (a *app) runConvert(cmd *cobra.Command, args []string) error {
	name := "<stdin>"
	var (
		src []byte
		err error
	)
	if len(args) == 1 && args[0] != "-" {
		name = args[0]
		src, err = os.ReadFile(name)
		if err != nil {
			return err
		}
	} else {
		a.stdinHint()
		src, err = io.ReadAll(a.stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	opts, _, err := a.options(cmd, name)
	if err != nil {
		return err
	}

	tr, release := a.newTransformer(1)
	defer release()

	res, err := tr.Transform(src, opts)
	if err != nil {
		return &sourceError{Path: name, Err: err}
	}
	if a.verify {
		vopts := verify.Options{Language: opts.Language, Module: opts.Target == transform.TargetDynamicImport}
		if err := verify.Check(res.Code, vopts); err != nil {
			return &sourceError{Path: name, Err: err}
		}
	}

	for _, skip := range res.Skipped {
		a.logger.Info("left unchanged", "file", name, "line", skip.Line, "kind", skip.Kind, "reason", skip.Reason)
	}

	_, err = io.WriteString(a.stdout, res.Code)
	return err
}

// stdinHint tells an interactive user that input is expected.
func (a *app) stdinHint() {
	f, ok := a.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return
	}
	fmt.Fprintln(a.stderr, "esmshift: reading module source from stdin (press Ctrl-D to finish)")
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the esmshift version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(a.stdout, "esmshift %s\n", version)
			return err
		},
	}
}
