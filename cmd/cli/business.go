package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/internal/auditlog"
	"github.com/go-petr/pet-ledger/internal/auditrepo"
	"github.com/go-petr/pet-ledger/internal/dataclient"
	"github.com/go-petr/pet-ledger/internal/eventpub"
	"github.com/go-petr/pet-ledger/internal/idempotencyrepo"
	"github.com/go-petr/pet-ledger/internal/memstore"
)

var businessCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "business",
	Short: "Run the business layer server.",
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

		mem := memstore.New()

		var (
			auditRepo auditlog.Repo = mem.Audit()
			deps                    = httpserver.BusinessDeps{Idempotency: mem.Idempotency()}
		)

		if db != nil {
			auditRepo = auditrepo.NewRepoPGS(db)
			deps.Idempotency = idempotencyrepo.NewRepoPGS(db)
			deps.Ping = db.PingContext
		}

		publisher := eventpub.New(config.Brokers(), config.KafkaAuditTopic, logger)

		audit := auditlog.New(auditRepo, publisher, logger, auditlog.Options{
			QueueSize:  config.AuditQueueSize,
			Workers:    config.AuditWorkers,
			MaxRetries: config.AuditMaxRetries,
			Backoff:    config.AuditBackoff,
			Timeout:    config.StoreTimeout,
		})

		deps.Audit = audit
		deps.Client = dataclient.New(config.DataServiceURL, dataclient.Options{
			Timeout:    config.UpstreamTimeout,
			MaxRetries: config.UpstreamMaxRetries,
			Backoff:    config.UpstreamBackoff,
		})

		closers := []func(context.Context) error{audit.Close, closer(publisher.Close)}
		if db != nil {
			closers = append(closers, closer(db.Close))
		}

		server, err := httpserver.NewBusiness(deps, logger, config)
		if err != nil {
			logger.Error().Err(err).Msg("cannot create server")
			return err
		}

		return serve(logger, config, config.BusinessServerAddress, server, closers...)
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(businessCmd)
}
