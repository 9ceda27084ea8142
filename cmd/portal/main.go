package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "portal",
		Short:         "Discord login portal and guild join tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.AddCommand(
		newServeCommand(),
		newJoinGuildCommand(out),
		newAuthorizeURLCommand(out),
		newVersionCommand(out),
	)
	return cmd
}
