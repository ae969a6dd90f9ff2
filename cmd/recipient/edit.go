package main

import (
	"context"
	"os"
	"time"

	"github.com/aretw0/recipient"
	"github.com/aretw0/recipient/internal/cli"
	"github.com/aretw0/recipient/internal/presentation/tui"
	"github.com/aretw0/recipient/pkg/adapters/httpclient"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [recipient-id]",
	Short: "Edit a recipient interactively",
	Long: `Loads the recipient and opens the edit screen in the terminal.

Type 'help' at the prompt for the list of commands. With --remote the screen
talks to the record API of a running 'recipient serve' instead of the local store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		plain, _ := cmd.Flags().GetBool("plain")
		remote, _ := cmd.Flags().GetString("remote")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		id := cfg.RecipientID
		if len(args) > 0 {
			id = args[0]
		}

		var screen *recipient.Screen
		if remote != "" {
			client := httpclient.New(remote, httpclient.WithLogger(logger), httpclient.WithRetries(2, 250*time.Millisecond))
			screen = recipient.NewScreen(id, client.FetchRecipient, client.UpdateRecipient, recipient.WithLogger(logger))
		} else {
			stack, err := cli.NewStack(sigCtx, cfg, logger)
			if err != nil {
				return err
			}
			defer stack.Close()
			screen = stack.NewScreen(id)
		}

		out := cmd.OutOrStdout()
		styled := !plain && !jsonMode && tui.IsTerminal(out)
		if styled {
			tui.PrintBanner(out)
		}

		err = cli.RunEdit(sigCtx, screen, cli.EditOptions{
			In:       os.Stdin,
			Out:      out,
			Renderer: tui.NewRenderer(styled),
			JSON:     jsonMode,
		})
		return cli.HandleExecutionError(err)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().Bool("json", false, "Print state and view as JSON lines")
	editCmd.Flags().Bool("plain", false, "Disable colors and the banner")
	editCmd.Flags().String("remote", "", "Base URL of a recipient server to edit against")
}
