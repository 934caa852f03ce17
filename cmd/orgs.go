package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var orgsCmd = &cobra.Command{
	Use:   "orgs",
	Short: "List the connected orgs flows can be activated in",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		setupLogging(cfg)

		orgs, err := newDirectory(cfg).ListConnectedOrgs(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(orgs) == 0 {
			fmt.Fprintln(out, "No connected orgs.")
			return nil
		}
		for _, o := range orgs {
			fmt.Fprintf(out, "%-24s %-36s %s\n", o.Name(), o.Username, o.InstanceURL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(orgsCmd)
}
