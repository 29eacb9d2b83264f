package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"phocaforme/model"
)

var (
	recentJSON  bool
	recentClear bool
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently viewed listings, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.Close()

		if recentClear {
			rt.history.Clear()
			logrus.Info("Recently viewed history cleared")
			return
		}

		items := rt.history.Load()
		newestFirst := make([]model.ViewedItem, 0, len(items))
		for i := len(items) - 1; i >= 0; i-- {
			newestFirst = append(newestFirst, items[i])
		}

		if recentJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(newestFirst); err != nil {
				logrus.Fatal(err)
			}
			return
		}

		if len(newestFirst) == 0 {
			fmt.Println("No recently viewed listings")
			return
		}

		tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tHAVE\tWANT\tPHOTOS\tSTATUS")
		for _, item := range newestFirst {
			status := "open"
			if item.IsResolved {
				status = "traded"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
				item.ID, item.Title, model.TagNames(item.OwnTags), model.TagNames(item.TargetTags), len(item.Images), status)
		}
		tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(recentCmd)
	recentCmd.Flags().BoolVar(&recentJSON, "json", false, "Output as JSON")
	recentCmd.Flags().BoolVar(&recentClear, "clear", false, "Forget every recently viewed listing")
}
