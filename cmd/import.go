package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/flightdelay/internal/store"
)

var importTo string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy the configured dataset into a SQLite or Postgres database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if importTo != "" {
			cfg.Store.DatabaseURL = importTo
		}
		if err := cfg.Validate("import"); err != nil {
			return err
		}
		target := cfg.Store.DatabaseURL
		if target == cfg.Data.Source {
			return eris.New("import target is the configured data source")
		}

		ds, err := loadDataset(ctx, cfg)
		if err != nil {
			return err
		}

		st, err := store.Open(ctx, target, poolConfig(cfg))
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}
		if err := st.SaveDataset(ctx, ds); err != nil {
			return eris.Wrap(err, "save dataset")
		}

		zap.L().Info("import complete",
			zap.String("source", cfg.Data.Source),
			zap.Int("flights", len(ds.Flights)),
			zap.Int("airports", len(ds.Airports)),
			zap.Int("airlines", len(ds.Airlines)),
			zap.Int("aircrafts", len(ds.Aircrafts)),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importTo, "to", "", "target database: sqlite://path or postgres://... (default store.database_url)")
	rootCmd.AddCommand(importCmd)
}
