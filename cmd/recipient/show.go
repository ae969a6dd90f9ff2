package main

import (
	"context"
	"encoding/json"

	"github.com/aretw0/recipient/internal/cli"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [recipient-id]",
	Short: "Print a stored recipient record, or list the stored ids",
	Args:  cobra.MaximumNArgs(1),
	Long: `Prints the stored record as JSON. Account numbers are masked unless
--reveal is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reveal, _ := cmd.Flags().GetBool("reveal")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		stack, err := loadStack(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		if len(args) == 0 {
			ids, err := stack.Store.List(sigCtx)
			if err != nil {
				return err
			}
			return enc.Encode(ids)
		}

		store := stack.MaskedStore()
		if reveal {
			store = stack.Store
		}
		rec, err := store.Load(sigCtx, args[0])
		if err != nil {
			return err
		}
		return enc.Encode(rec)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("reveal", false, "Print the account number in full")
}
