package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"phocaforme/market"
	"phocaforme/model"
)

var chatCmd = &cobra.Command{
	Use:   "chat [id]",
	Short: "Open a chat with the owner of a listing",
	Long:  "Asks the marketplace for the chat room about the listing, creating it on first contact, and prints its id.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.Close()

		if rt.cfg.AuthToken == "" {
			logrus.Warn("No auth_token configured; the marketplace will likely refuse the request")
		}

		viewer := market.NewViewer(rt.client, rt.history)
		room, err := viewer.OpenChat(cmd.Context(), model.ID(args[0]))
		if err != nil {
			rt.Close()
			logrus.Fatalf("Failed to open chat for listing %s: %v", args[0], err)
		}
		fmt.Println(room.ID)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
