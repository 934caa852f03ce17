package cmd

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/flowactivate/internal/config"
	"github.com/ziadkadry99/flowactivate/internal/notifications"
	"github.com/ziadkadry99/flowactivate/internal/progress"
	"github.com/ziadkadry99/flowactivate/internal/session"
	"github.com/ziadkadry99/flowactivate/internal/ui"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "flowactivate",
	Short: "Activate the latest version of Salesforce flows across connected orgs",
	Long: `flowactivate asks for one or more flow API names and the orgs to update,
then makes the newest version of each flow the active one in every selected
org and verifies the change.

Orgs and their credentials come from the Salesforce CLI (sf); authenticate
with ` + "`sf org login web`" + ` before running.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runSession,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runID := setupLogging(cfg)

	ctrl := session.New(
		newPrompter(),
		newDirectory(cfg),
		newActivator(cfg),
		cmd.OutOrStdout(),
		progress.NewReporter(),
		session.Options{
			Version:              Version,
			Concurrency:          cfg.Workers(),
			SkipUnresolvableOrgs: cfg.SkipUnresolvableOrgs,
		},
	)

	summary, err := ctrl.Run(cmd.Context())
	if errors.Is(err, session.ErrCanceled) {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Info("Canceled. No flows were changed."))
		return nil
	}

	if summary != nil && cfg.Notify.WebhookURL != "" && (len(summary.Results) > 0 || len(summary.Skipped) > 0) {
		d := notifications.NewDispatcher(cfg.Notify.WebhookURL, notifications.Severity(cfg.Notify.MinSeverity))
		if nerr := d.Dispatch(cmd.Context(), notifications.Build(runID, summary)); nerr != nil {
			log.Warn().Err(nerr).Msg("run summary webhook failed")
		}
	}
	return err
}
