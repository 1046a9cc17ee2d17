package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ghj",
		Short:         "Join CSV files with a grace hash join under a page budget",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newJoinCmd())
	return root
}
