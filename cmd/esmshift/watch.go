package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gnana997/esmshift/pkg/workspace"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		f        treeFlags
		debounce time.Duration
		initial  bool
	)
	cmd := &cobra.Command{
		Use:   "watch <root>",
		Short: "Re-convert modules as they change",
		Long: `Watch root and convert every matching file when it is created or
modified. Requires --out or --write. Stops on interrupt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.runOptions(cmd, args[0], &f)
			if err != nil {
				return err
			}
			if opts.OutDir == "" && !opts.Write {
				return errors.New("watch needs --out or --write")
			}
			if !cmd.Flags().Changed("debounce") && a.cfg.DebounceMs > 0 {
				debounce = a.cfg.Debounce()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner, release, err := a.newRunner(opts.Workers)
			if err != nil {
				return err
			}
			defer release()

			if initial {
				stats, err := runner.Run(ctx, opts, nil)
				if err != nil {
					return err
				}
				printRunSummary(a.stdout, stats)
			}

			w, err := workspace.NewWatcher(runner, workspace.WatchOptions{
				Run:      opts,
				Debounce: debounce,
				OnConvert: func(rep workspace.FileReport, err error) {
					if err != nil {
						fmt.Fprintf(a.stderr, "esmshift: %v\n", err)
						return
					}
					if rep.Output != "" {
						fmt.Fprintf(a.stdout, "%s -> %s\n", rep.Rel, rep.Output)
					}
				},
			}, a.logger)
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(a.stderr, "esmshift: watching %s (Ctrl-C to stop)\n", args[0])

			<-ctx.Done()
			return w.Stop()
		},
	}
	f.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", workspace.DefaultDebounce, "quiet period before a changed file is converted")
	cmd.Flags().BoolVar(&initial, "initial", true, "convert the whole tree once before watching")
	return cmd
}
