package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/analytics"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Capex estimation and risk scoring",
	Long:  "Commands for the cost-benchmark tables, capex estimation, and property risk scores. These require the postgres driver.",
}

// initAnalytics opens the configured Postgres store and wraps its pool in an
// analytics engine. The caller owns closing the returned store.
func initAnalytics(cmd *cobra.Command) (*analytics.Engine, func(), error) {
	st, err := initPostgres(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return analytics.NewEngine(st.Pool()), func() { st.Close() }, nil
}

var analyticsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the cost-benchmark and renovation-module tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng, closeFn, err := initAnalytics(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := eng.Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Analytics schema is up to date.")
		return nil
	},
}

var analyticsSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed construction cost benchmarks and renovation modules",
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng, closeFn, err := initAnalytics(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := eng.Migrate(cmd.Context()); err != nil {
			return err
		}
		n, err := eng.Seed(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d rows.\n", n)
		return nil
	},
}

var analyticsCapexCmd = &cobra.Command{
	Use:   "capex",
	Short: "Estimate capex and post-renovation yield for a property",
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng, closeFn, err := initAnalytics(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		propertyID, _ := cmd.Flags().GetInt64("property")
		modules, _ := cmd.Flags().GetInt64Slice("modules")
		country, _ := cmd.Flags().GetString("country")
		region, _ := cmd.Flags().GetString("region")
		buildingType, _ := cmd.Flags().GetString("building-type")
		specLevel, _ := cmd.Flags().GetString("spec-level")
		if country == "" {
			country = cfg.Analytics.Country
		}
		if region == "" {
			region = cfg.Analytics.Region
		}
		if buildingType == "" {
			buildingType = cfg.Analytics.BuildingType
		}
		if specLevel == "" {
			specLevel = cfg.Analytics.SpecLevel
		}

		req := analytics.CapexRequest{
			PropertyID:          propertyID,
			Country:             country,
			Region:              region,
			BuildingType:        buildingType,
			SpecLevel:           specLevel,
			RenovationModuleIDs: modules,
		}
		if cmd.Flags().Changed("purchase-price") {
			v, _ := cmd.Flags().GetFloat64("purchase-price")
			req.PurchasePrice = &v
		}
		if cmd.Flags().Changed("target-rent") {
			v, _ := cmd.Flags().GetFloat64("target-rent")
			req.TargetRentPCM = &v
		}
		if cmd.Flags().Changed("current-rent") {
			v, _ := cmd.Flags().GetFloat64("current-rent")
			req.CurrentRentPCM = &v
		}
		if cmd.Flags().Changed("opex") {
			v, _ := cmd.Flags().GetFloat64("opex")
			req.OpexPerYear = &v
		}

		est, err := eng.EstimateCapex(cmd.Context(), req)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(est)
	},
}

var analyticsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute missing refurb intensity and energy risk scores",
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng, closeFn, err := initAnalytics(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		n, err := eng.RefreshRiskScores(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Updated %d properties.\n", n)
		return nil
	},
}

func init() {
	analyticsCapexCmd.Flags().Int64("property", 0, "property id to estimate")
	analyticsCapexCmd.Flags().Int64Slice("modules", nil, "renovation module ids to include")
	analyticsCapexCmd.Flags().String("country", "", "cost benchmark country (defaults from config)")
	analyticsCapexCmd.Flags().String("region", "", "cost benchmark region (defaults from config)")
	analyticsCapexCmd.Flags().String("building-type", "", "cost benchmark building type (defaults from config)")
	analyticsCapexCmd.Flags().String("spec-level", "", "cost benchmark spec level (defaults from config)")
	analyticsCapexCmd.Flags().Float64("purchase-price", 0, "purchase price for yield calculation")
	analyticsCapexCmd.Flags().Float64("target-rent", 0, "target rent pcm after renovation")
	analyticsCapexCmd.Flags().Float64("current-rent", 0, "current rent pcm")
	analyticsCapexCmd.Flags().Float64("opex", 0, "yearly operating costs for yield calculation")
	_ = analyticsCapexCmd.MarkFlagRequired("property")

	analyticsCmd.AddCommand(analyticsMigrateCmd)
	analyticsCmd.AddCommand(analyticsSeedCmd)
	analyticsCmd.AddCommand(analyticsCapexCmd)
	analyticsCmd.AddCommand(analyticsRefreshCmd)
	rootCmd.AddCommand(analyticsCmd)
}
