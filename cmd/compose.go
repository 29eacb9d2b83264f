package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"phocaforme/ingest"
	"phocaforme/market"
	"phocaforme/tui"
	"phocaforme/utils"
)

var (
	composeTitle       string
	composeContent     string
	composeCardType    string
	composeGroup       int64
	composeHave        []int64
	composeWant        []int64
	composeInteractive bool
	composeDryRun      bool
	composeWait        time.Duration
)

var composeCmd = &cobra.Command{
	Use:   "compose [image...]",
	Short: "Create a listing from image files",
	Long: `Creates a trade listing. Images are checked and previewed concurrently
and uploaded in the order given.

Examples:
  phocaforme compose --title "Minji POB" --card-type album --have 1 --want 2 a.jpg b.jpg
  phocaforme compose -i ./cards/`,
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.Close()

		p := rt.pipeline()
		defer p.Close()

		composer := market.NewComposer(rt.client, p)
		composer.Draft.Title = composeTitle
		composer.Draft.Content = composeContent
		composer.Draft.CardType = composeCardType
		composer.Draft.GroupID = composeGroup
		composer.Draft.OwnMembers = composeHave
		composer.Draft.TargetMembers = composeWant

		if composeInteractive {
			runComposerTUI(rt, composer, args)
			return
		}

		if len(args) == 0 {
			logrus.Fatal("At least one image is required (or use -i)")
		}
		if composer.Draft.Title == "" {
			composer.Draft.Title = utils.DeriveTitleFromFilename(args[0])
		}

		if err := previewAll(cmd.Context(), p, args); err != nil {
			logrus.Fatal(err)
		}
		if composeDryRun {
			if err := composer.Validate(); err != nil {
				logrus.Fatalf("Draft is not ready: %v", err)
			}
			logrus.Info("Dry run: listing not submitted")
			return
		}

		id, err := composer.Submit(cmd.Context())
		if err != nil {
			logrus.Fatalf("Failed to submit listing: %v", err)
		}
		logrus.Infof("Created listing %s", id)
	},
}

// previewAll decodes every image and reports the result per file, in the
// order the files were given.
func previewAll(ctx context.Context, p *ingest.Pipeline, files []string) error {
	for _, f := range files {
		if err := utils.ValidateImageFile(f); err != nil {
			return err
		}
	}

	cmd := p.Enqueue(ingest.FileSources(files...)...)
	if composeWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, composeWait)
		defer cancel()
	}
	if err := ingest.Drain(ctx, p, cmd); err != nil {
		logrus.Warnf("Stopped waiting for previews: %v", err)
	}

	for i, e := range p.Entries() {
		log := logrus.WithField("file", e.Source.Name())
		switch e.Status() {
		case ingest.StatusReady:
			log.Infof("%d. %dx%d %s (%s)", i+1, e.Preview.Width, e.Preview.Height, e.Preview.MIME, utils.FormatSize(int64(e.Preview.Bytes)))
		case ingest.StatusFailed:
			log.Warnf("%d. no preview: %v", i+1, e.Err)
		default:
			log.Infof("%d. preview still loading", i+1)
		}
	}
	return nil
}

func runComposerTUI(rt *runtime, composer *market.Composer, files []string) {
	app, err := tui.Run(rt.cfg, composer, files)
	if err != nil {
		logrus.Fatalf("TUI exited with error: %v", err)
	}
	if id := app.SubmittedID(); id != "" {
		fmt.Printf("Created listing %s\n", id)
	}
}

func init() {
	rootCmd.AddCommand(composeCmd)
	composeCmd.Flags().StringVarP(&composeTitle, "title", "t", "", "Listing title (default derived from the first image name)")
	composeCmd.Flags().StringVar(&composeContent, "content", "", "Listing description")
	composeCmd.Flags().StringVar(&composeCardType, "card-type", "", "Card type, e.g. album or pob")
	composeCmd.Flags().Int64Var(&composeGroup, "group", 0, "Group id")
	composeCmd.Flags().Int64SliceVar(&composeHave, "have", nil, "Idol member ids you own (repeatable)")
	composeCmd.Flags().Int64SliceVar(&composeWant, "want", nil, "Idol member ids you are looking for (repeatable)")
	composeCmd.Flags().BoolVarP(&composeInteractive, "interactive", "i", false, "Open the composer TUI")
	composeCmd.Flags().BoolVar(&composeDryRun, "dry-run", false, "Preview and validate without submitting")
	composeCmd.Flags().DurationVar(&composeWait, "wait", 30*time.Second, "How long to wait for previews before submitting")
}
