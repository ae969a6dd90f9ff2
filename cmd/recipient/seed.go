package main

import (
	"context"
	"fmt"

	"github.com/aretw0/recipient/internal/cli"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Load recipient records into the configured store",
	Long: `Reads a YAML or JSON list of records (snake_case keys, as on the wire)
and saves them. Existing records are kept unless --force is set.
Without a file, only the default recipient is ensured.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		stack, err := loadStack(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "default recipient ready")
			return nil
		}

		records, err := cli.ReadRecords(args[0])
		if err != nil {
			return err
		}
		written, err := cli.SeedRecords(sigCtx, stack.Store, records, force)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d of %d records\n", written, len(records))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().Bool("force", false, "Overwrite existing records")
}
