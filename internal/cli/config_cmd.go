package cli

import (
	"github.com/spf13/cobra"

	"github.com/1cu/kleinanzeigen-bot/internal/bot"
)

// NewCreateConfigCmd creates the create-config command.
func NewCreateConfigCmd(b *bot.Bot) *cobra.Command {
	return &cobra.Command{
		Use:   "create-config",
		Short: "Creates a default config file if none exists yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return b.CreateDefaultConfig()
		},
	}
}
