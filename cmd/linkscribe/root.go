package main

import (
	"github.com/spf13/cobra"
)

const appName = "linkscribe"

type rootFlags struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Classify web pages into LinkScribe categories",
		Long:          "LinkScribe fetches a web page, extracts its visible text and predicts its category with a pre-trained classifier.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file (default $LINKSCRIBE_CONFIG)")

	cmd.AddCommand(
		newServeCmd(flags),
		newPredictCmd(flags),
	)
	return cmd
}
