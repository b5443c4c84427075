package cmd

import (
	"fmt"

	"emoji-sync/core/config"

	"github.com/spf13/cobra"
)

// initCmd writes a starter configuration file.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Init writes an emoji-config.toml with a Slack provider enabled and a
Discord provider stubbed out. It refuses to overwrite an existing file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefault(configPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", configPath)
		fmt.Println("set SLACK_BOT_TOKEN (and optionally DISCORD_BOT_TOKEN, DISCORD_GUILD_ID) and run: emoji-sync sync")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
