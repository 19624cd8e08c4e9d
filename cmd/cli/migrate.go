package cli

import (
	"errors"

	"github.com/spf13/cobra"

	dbfs "github.com/go-petr/pet-ledger/db"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

var migrateCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "migrate",
	Short: "Apply pending database migrations.",
	RunE: func(_ *cobra.Command, _ []string) error {
		config, logger, err := setup()
		if err != nil {
			return err
		}

		db, err := openDB(config)
		if err != nil {
			logger.Error().Err(err).Msg("cannot connect to database")
			return err
		}

		if db == nil {
			err = errors.New("migrations need the postgres store")
			logger.Error().Err(err).Send()

			return err
		}
		defer db.Close()

		if err := dbpkg.Migrate(db, dbfs.Migrations); err != nil {
			logger.Error().Err(err).Msg("cannot migrate database")
			return err
		}

		logger.Info().Msg("migrations applied")

		return nil
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(migrateCmd)
}
