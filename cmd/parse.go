package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/extract"
)

var parseCmd = &cobra.Command{
	Use:   "parse <textfile>",
	Short: "Run the page extractor against a saved page text dump",
	Long:  "Reads a plain-text page dump, applies the field extractor, and prints the resulting record as JSON. Useful for tuning extraction against new portal layouts.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "parse")
		}

		url, _ := cmd.Flags().GetString("url")
		title, _ := cmd.Flags().GetString("title")
		address, _ := cmd.Flags().GetString("address")

		rec := extract.Record(url, title, address, string(body))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	parseCmd.Flags().String("url", "", "source URL to attach to the record")
	parseCmd.Flags().String("title", "", "page title to attach to the record")
	parseCmd.Flags().String("address", "", "address to attach to the record")
	rootCmd.AddCommand(parseCmd)
}
