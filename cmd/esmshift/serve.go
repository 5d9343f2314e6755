package main

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/gnana997/esmshift/pkg/mcp"
	"github.com/gnana997/esmshift/pkg/mcplog"
	"github.com/gnana997/esmshift/pkg/util"
)

func newServeCmd(a *app) *cobra.Command {
	var logPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor tools over MCP on stdio",
		Long: `Start an MCP server on stdin/stdout exposing the convert_selection and
inspect_module tools. With --mcp-log every tool call is appended to a JSONL
file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			calls, err := mcplog.Open(pick(logPath, cmd.Flags().Changed("mcp-log"), a.cfg.MCPLog))
			if err != nil {
				return err
			}
			defer calls.Close()

			tr, release := a.newTransformer(util.GetOptimalPoolSize())
			defer release()

			srv := mcpserver.NewServer(tr, version, calls, a.logger)
			if err := srv.ServeStdio(); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&logPath, "mcp-log", "", "append a JSONL record of every tool call to this file")
	return cmd
}
