package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect [FILE]",
		Short: "Show how each import and export declaration would be converted",
		Long: `List every top-level import and export declaration of FILE (or stdin) with
its shape and whether the current target converts it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "<stdin>"
			var (
				src []byte
				err error
			)
			if len(args) == 1 && args[0] != "-" {
				name = args[0]
				src, err = os.ReadFile(name)
			} else {
				a.stdinHint()
				src, err = io.ReadAll(a.stdin)
			}
			if err != nil {
				return err
			}

			opts, _, err := a.options(cmd, name)
			if err != nil {
				return err
			}

			tr, release := a.newTransformer(1)
			defer release()

			decls, err := tr.Inspect(src, opts)
			if err != nil {
				return &sourceError{Path: name, Err: err}
			}

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(decls); err != nil {
					return fmt.Errorf("failed to encode report: %w", err)
				}
				return nil
			}
			printDeclarations(a.stdout, decls)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
