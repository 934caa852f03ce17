package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/flowactivate/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize flowactivate configuration with an interactive wizard",
	Long:  `Runs an interactive wizard and writes the answers to the config file (default .flowactivate.yml).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
