package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

// NewRootCommand creates the root command for the bug tracker server.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bugtracker",
		Short:         "Bug tracker API server",
		Long:          "Serves the bug tracker's users, projects, bugs and comments over HTTP and gRPC.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}
