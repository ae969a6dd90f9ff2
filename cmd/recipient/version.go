package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/recipient"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of recipient",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "recipient version %s\n", strings.TrimSpace(recipient.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
