package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var validateTest bool

// validateCmd checks the configuration without syncing.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and provider credentials",
	Long: `Validate parses the configuration, checks that every required
environment variable is set, and optionally performs a live connectivity
check against each enabled provider.

Examples:
  # Parse config and check environment variables
  emoji-sync validate

  # Additionally call each provider's API
  emoji-sync validate --test`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateTest, "test", false, "Perform a live API check against each enabled provider")

	RootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, l, svc, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	fmt.Printf("configuration OK: %d provider(s), %d enabled\n",
		len(cfg.Providers), len(cfg.EnabledProviders()))

	report := svc.Validate(context.Background(), validateTest)

	for _, name := range report.MissingEnv {
		fmt.Printf("missing environment variable: %s\n", name)
	}
	for _, check := range report.Providers {
		if check.OK {
			fmt.Printf("%s (%s): ok, %d emojis visible\n", check.Namespace, check.Type, check.Count)
		} else {
			fmt.Printf("%s (%s): failed: %s\n", check.Namespace, check.Type, check.Error)
		}
	}

	if !report.OK() {
		return fmt.Errorf("validation failed")
	}
	return nil
}
