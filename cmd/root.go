package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "pms",
		Short:         "Page-map session store with idle last-page eviction",
		Long:          "pms keeps the page maps of live sessions in memory, persists every page version, and discards the in-memory last page of page maps left idle longer than the configured timeout.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(v),
		newStatusCmd(v),
	)

	return rootCmd
}
