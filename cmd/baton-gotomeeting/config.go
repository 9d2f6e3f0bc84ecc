package main

import (
	"context"
	"fmt"
	"time"

	"github.com/conductorone/baton-sdk/pkg/cli"
	"github.com/spf13/cobra"
)

// config defines the external configuration required for the connector to run.
type config struct {
	cli.BaseConfig `mapstructure:",squash"` // Puts the base config options in the same place as the connector options

	Token           string        `mapstructure:"token"`
	BaseURL         string        `mapstructure:"base-url"`
	ProductType     string        `mapstructure:"product-type"`
	MeetingLookback time.Duration `mapstructure:"meeting-lookback"`
}

// validateConfig is run after the configuration is loaded, and should return an error if it isn't valid.
func validateConfig(ctx context.Context, cfg *config) error {
	if cfg.Token == "" {
		return fmt.Errorf("token is required, use --help for more information")
	}

	if cfg.MeetingLookback < 0 {
		return fmt.Errorf("meeting-lookback must not be negative")
	}

	return nil
}

func cmdFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("token", "", "OAuth access token used to authenticate with the GoToMeeting API. ($BATON_TOKEN)")
	cmd.PersistentFlags().String("base-url", "", "Override the GoToMeeting API base URL. ($BATON_BASE_URL)")
	cmd.PersistentFlags().String("product-type", "G2M", "Product type assigned to organizers created by the connector. ($BATON_PRODUCT_TYPE)")
	cmd.PersistentFlags().Duration("meeting-lookback", 0, "Sync historical meetings started within this duration instead of scheduled ones. ($BATON_MEETING_LOOKBACK)")
}
