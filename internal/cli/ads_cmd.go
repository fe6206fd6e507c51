package cli

import (
	"github.com/spf13/cobra"

	"github.com/1cu/kleinanzeigen-bot/internal/bot"
)

const adsFlagUsage = `ads to process: "all", "new", "changed", "due" or a comma-separated list of ids`

// NewVerifyCmd creates the verify command.
func NewVerifyCmd(b *bot.Bot) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Checks the config and all selected ad files for errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return b.Verify(cmd.Context())
		},
	}
	cmd.Flags().String("ads", "all", adsFlagUsage)
	return cmd
}

// NewPublishCmd creates the publish command.
func NewPublishCmd(b *bot.Bot) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publishes the selected ads on the platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			return b.Publish(cmd.Context())
		},
	}
	cmd.Flags().String("ads", "all", adsFlagUsage)
	return cmd
}

// NewDeleteCmd creates the delete command.
func NewDeleteCmd(b *bot.Bot) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Deletes the selected ads from the platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			return b.DeleteAds(cmd.Context())
		},
	}
	cmd.Flags().String("ads", "all", adsFlagUsage)
	return cmd
}

// NewDownloadCmd creates the download command.
func NewDownloadCmd(b *bot.Bot) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Downloads the account's ads into editable YAML files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return b.Download(cmd.Context())
		},
	}
	cmd.Flags().String("ads", "all", adsFlagUsage)
	cmd.Flags().String("path", "", "target directory for downloaded ads (overrides download_dir)")
	return cmd
}
