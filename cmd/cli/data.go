package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/internal/eventpub"
	"github.com/go-petr/pet-ledger/internal/memstore"
)

var dataCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "data",
	Short: "Run the data layer server.",
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

		store := httpserver.MemoryDataStore(memstore.New())
		closers := []func(context.Context) error{}

		if db != nil {
			store = httpserver.PostgresDataStore(db)
		}

		publisher := eventpub.New(config.Brokers(), config.KafkaTransactionTopic, logger)
		closers = append(closers, closer(publisher.Close))

		if db != nil {
			closers = append(closers, closer(db.Close))
		}

		server, err := httpserver.NewData(store, publisher, logger, config)
		if err != nil {
			logger.Error().Err(err).Msg("cannot create server")
			return err
		}

		return serve(logger, config, config.DataServerAddress, server, closers...)
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(dataCmd)
}
