package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"phocaforme/market"
	"phocaforme/model"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete one of your listings",
	Long:  "Deletes the listing on the marketplace and drops it from the recently viewed history.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.Close()

		viewer := market.NewViewer(rt.client, rt.history)
		if err := viewer.Delete(cmd.Context(), model.ID(args[0])); err != nil {
			rt.Close()
			logrus.Fatalf("failed to delete listing %s: %v", args[0], err)
		}
		logrus.Infof("Deleted listing %s", args[0])
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
