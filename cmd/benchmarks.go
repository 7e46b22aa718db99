package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/benchmark"
)

var benchmarksCmd = &cobra.Command{
	Use:   "benchmarks",
	Short: "Rebuild and export rent benchmarks",
}

var benchmarksBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Recompute rent-per-sqm buckets from stored rent listings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		minListings, _ := cmd.Flags().GetInt("min-listings")
		if !cmd.Flags().Changed("min-listings") {
			minListings = cfg.Benchmarks.MinListingsPerBucket
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		created, err := benchmark.New(st).Build(ctx, minListings)
		if err != nil {
			return err
		}

		p := message.NewPrinter(language.BritishEnglish)
		p.Printf("Created %d benchmark buckets (min %d listings per bucket).\n", created, minListings)
		return nil
	},
}

var benchmarksExportCmd = &cobra.Command{
	Use:   "export <out.xlsx>",
	Short: "Export the current benchmarks to an xlsx workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		rows, err := st.ListRentBenchmarks(ctx)
		if err != nil {
			return err
		}
		if err := benchmark.ExportXLSX(args[0], rows); err != nil {
			return err
		}

		fmt.Printf("Wrote %d benchmarks to %s.\n", len(rows), args[0])
		return nil
	},
}

func init() {
	benchmarksBuildCmd.Flags().Int("min-listings", benchmark.DefaultMinListings, "minimum qualifying listings per bucket")

	benchmarksCmd.AddCommand(benchmarksBuildCmd)
	benchmarksCmd.AddCommand(benchmarksExportCmd)
	rootCmd.AddCommand(benchmarksCmd)
}
