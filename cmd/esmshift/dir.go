package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnana997/esmshift/pkg/util"
	"github.com/gnana997/esmshift/pkg/workspace"
)

// treeFlags are shared by dir and watch.
type treeFlags struct {
	out     string
	write   bool
	include []string
	exclude []string
	workers int
}

func (f *treeFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.out, "out", "o", "", "write converted files here, mirroring the source tree")
	flags.BoolVarP(&f.write, "write", "w", false, "rewrite changed files in place")
	flags.StringSliceVar(&f.include, "include", nil, "doublestar patterns of files to convert (default: all module extensions)")
	flags.StringSliceVar(&f.exclude, "exclude", nil, "doublestar patterns to skip (default: node_modules, build output, .d.ts)")
	flags.IntVar(&f.workers, "workers", 0, "parallel conversions (default: number of CPUs)")
}

// runOptions merges flags, project config and defaults for root.
func (a *app) runOptions(cmd *cobra.Command, root string, f *treeFlags) (workspace.RunOptions, error) {
	if f.write && cmd.Flags().Changed("out") {
		return workspace.RunOptions{}, errors.New("--out and --write are mutually exclusive")
	}

	opts, force, err := a.options(cmd, "")
	if err != nil {
		return workspace.RunOptions{}, err
	}

	scan := workspace.DefaultScanOptions()
	if len(a.cfg.Include) > 0 {
		scan.Include = a.cfg.Include
	}
	if len(a.cfg.Exclude) > 0 {
		scan.Exclude = a.cfg.Exclude
	}
	if cmd.Flags().Changed("include") {
		scan.Include = f.include
	}
	if cmd.Flags().Changed("exclude") {
		scan.Exclude = f.exclude
	}

	out := ""
	if !f.write {
		out = pick(f.out, cmd.Flags().Changed("out"), a.cfg.OutDir)
	}

	return workspace.RunOptions{
		Root:          root,
		OutDir:        out,
		Write:         f.write,
		Scan:          scan,
		Transform:     opts,
		ForceLanguage: force,
		Verify:        a.verify,
		Workers:       util.GetOptimalPoolSizeWithOverride(f.workers),
	}, nil
}

func (a *app) newRunner(workers int) (*workspace.Runner, func(), error) {
	tr, release := a.newTransformer(workers)
	conv, err := workspace.NewConverter(tr, workspace.DefaultCacheSize, a.logger)
	if err != nil {
		release()
		return nil, nil, err
	}
	return workspace.NewRunner(conv, a.logger), release, nil
}

func newDirCmd(a *app) *cobra.Command {
	var f treeFlags
	cmd := &cobra.Command{
		Use:   "dir <root>",
		Short: "Convert every module under a directory",
		Long: `Convert every matching file under root in parallel.

With --out the converted tree is written to another directory, mirroring
the layout under root. With --write changed files are replaced in place.
With neither, files are converted and only the summary is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.runOptions(cmd, args[0], &f)
			if err != nil {
				return err
			}

			runner, release, err := a.newRunner(opts.Workers)
			if err != nil {
				return err
			}
			defer release()

			stats, err := runner.Run(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}

			printRunSummary(a.stdout, stats)
			if stats.FilesFailed > 0 {
				return fmt.Errorf("%d of %d files failed", stats.FilesFailed, stats.FilesDiscovered)
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
