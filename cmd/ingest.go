package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/ingest"
	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/loader"
	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/model"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest scraper output files into the entity graph",
	Long:  "Reads one or more scraper dumps (JSON array or JSON Lines) and upserts the contained listings as one run.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		portal, _ := cmd.Flags().GetString("portal")
		location, _ := cmd.Flags().GetString("location")
		listingType, _ := cmd.Flags().GetString("type")
		if portal == "" {
			portal = cfg.Ingest.Portal
		}
		if listingType == "" {
			listingType = cfg.Ingest.ListingType
		}

		records, err := loader.LoadFiles(ctx, args)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		in := ingest.New(st, cfg.Resolver())
		summary, err := in.IngestBatch(ctx, records, ingest.Options{
			Portal:        portal,
			LocationQuery: location,
			ListingType:   model.ListingType(listingType),
		})
		if err != nil {
			return err
		}

		p := message.NewPrinter(language.BritishEnglish)
		p.Printf("Run %s finished: %d records, %d ingested, %d rejected (%s).\n",
			summary.RunID, summary.Total, summary.Success, summary.Errors, summary.Status)
		for _, f := range summary.Failures {
			fmt.Fprintf(os.Stderr, "  record %d (%s): %s\n", f.Index, f.URL, f.Reason)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("portal", "", "portal the records were scraped from (default from config)")
	ingestCmd.Flags().String("location", "", "location query the scrape ran with")
	ingestCmd.Flags().String("type", "", "listing type: sale or rent (default from config)")
	rootCmd.AddCommand(ingestCmd)
}
