package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"phocaforme/market"
	"phocaforme/model"
	"phocaforme/recent"
)

var viewJSON bool

var viewCmd = &cobra.Command{
	Use:   "view [id...]",
	Short: "Show listings and remember them as recently viewed",
	Long: `Fetches each listing and prints it. Every listing that was fetched
successfully is added to the recently viewed history.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.Close()

		writer := recent.NewWriter(rt.history, len(args))
		defer writer.Close()
		viewer := market.NewViewer(rt.client, writer)

		failed := viewListings(cmd.Context(), viewer, args, printListing)

		if err := writer.Flush(context.Background()); err != nil {
			logrus.Warnf("history not flushed: %v", err)
		}
		if failed == len(args) {
			writer.Close()
			rt.Close()
			os.Exit(1)
		}
	},
}

// viewListings fetches each id in order and prints it. A failure on one id
// never stops the others, so every successful view reaches the history.
func viewListings(ctx context.Context, viewer *market.Viewer, ids []string, show func(*model.Listing) error) int {
	failed := 0
	for _, arg := range ids {
		listing, err := viewer.View(ctx, model.ID(arg))
		if errors.Is(err, market.ErrNotFound) {
			logrus.Errorf("listing %s not found", arg)
			failed++
			continue
		}
		if err != nil {
			logrus.Errorf("failed to fetch listing %s: %v", arg, err)
			failed++
			continue
		}
		if err := show(listing); err != nil {
			logrus.Errorf("failed to print listing %s: %v", arg, err)
		}
	}
	return failed
}

func printListing(l *model.Listing) error {
	if viewJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	}

	status := "open"
	if l.Bartered {
		status = "traded"
	}
	tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", l.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", l.Title)
	if l.NickName != "" {
		fmt.Fprintf(tw, "Seller:\t%s\n", l.NickName)
	}
	fmt.Fprintf(tw, "Card Type:\t%s\n", l.CardType)
	fmt.Fprintf(tw, "Have:\t%s\n", model.TagNames(l.OwnMembers))
	fmt.Fprintf(tw, "Want:\t%s\n", model.TagNames(l.TargetMembers))
	fmt.Fprintf(tw, "Status:\t%s\n", status)
	fmt.Fprintf(tw, "Photos:\t%d\n", len(l.Photos))
	for _, p := range l.Photos {
		fmt.Fprintf(tw, "\t%s\n", p)
	}
	if l.Content != "" {
		fmt.Fprintf(tw, "Content:\t%s\n", strings.ReplaceAll(l.Content, "\n", "\n\t"))
	}
	fmt.Fprintln(tw)
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().BoolVar(&viewJSON, "json", false, "Output as JSON")
}
