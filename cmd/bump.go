package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"phocaforme/market"
	"phocaforme/model"
)

var bumpCmd = &cobra.Command{
	Use:   "bump [id...]",
	Short: "Move your listings back to the top of the feed",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.Close()

		viewer := market.NewViewer(rt.client, rt.history)
		errorCount := 0
		for _, id := range args {
			if err := viewer.Bump(cmd.Context(), model.ID(id)); err != nil {
				logrus.Errorf("Failed to bump %s: %v", id, err)
				errorCount++
				continue
			}
			logrus.Infof("Bumped listing %s", id)
		}
		if errorCount > 0 {
			rt.Close()
			logrus.Fatalf("%d of %d listings could not be bumped", errorCount, len(args))
		}
	},
}

func init() {
	rootCmd.AddCommand(bumpCmd)
}
