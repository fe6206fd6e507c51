package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1cu/kleinanzeigen-bot/internal/bot"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(b *bot.Bot) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the version of this tool",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), b.Version())
			return nil
		},
	}
}

// NewUpdateCheckCmd creates the update-check command.
func NewUpdateCheckCmd(b *bot.Bot) *cobra.Command {
	return &cobra.Command{
		Use:   "update-check",
		Short: "Checks whether a newer release is available",
		RunE: func(cmd *cobra.Command, args []string) error {
			return b.CheckForUpdates(cmd.Context())
		},
	}
}
