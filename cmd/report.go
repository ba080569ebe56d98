package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/flightdelay/internal/dashboard"
	"github.com/sells-group/flightdelay/internal/filter"
	"github.com/sells-group/flightdelay/internal/render"
)

var (
	reportAirports []string
	reportAirlines []string
	reportFormat   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the dashboard views for a filter selection",
	Example: `  flightdelay report
  flightdelay report --airports JFK,EWR --airlines AA --format yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("report"); err != nil {
			return err
		}

		ds, err := loadDataset(ctx, cfg)
		if err != nil {
			return err
		}

		st := filter.NewState()
		if len(reportAirports) > 0 {
			st.Set(filter.DimensionAirport, ds.OriginDomain(), reportAirports)
		}
		if len(reportAirlines) > 0 {
			st.Set(filter.DimensionAirline, ds.AirlineDomain(), reportAirlines)
		}

		report := dashboard.Compute(ds, st, aggregateOptions(cfg))
		return render.Write(cmd.OutOrStdout(), reportFormat, report, thresholds(cfg))
	},
}

func init() {
	reportCmd.Flags().StringSliceVar(&reportAirports, "airports", nil, "origin airport codes to include (default all)")
	reportCmd.Flags().StringSliceVar(&reportAirlines, "airlines", nil, "airline ids to include (default all)")
	reportCmd.Flags().StringVar(&reportFormat, "format", render.FormatText, "output format: text, json or yaml")
	rootCmd.AddCommand(reportCmd)
}
