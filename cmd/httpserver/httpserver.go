// Package httpserver manages server creation and api routing.
package httpserver

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/accountdelivery"
	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/auditdelivery"
	"github.com/go-petr/pet-ledger/internal/backoffice"
	"github.com/go-petr/pet-ledger/internal/eventpub"
	"github.com/go-petr/pet-ledger/internal/historyservice"
	"github.com/go-petr/pet-ledger/internal/idempotencyrepo"
	"github.com/go-petr/pet-ledger/internal/ledgerdelivery"
	"github.com/go-petr/pet-ledger/internal/ledgerrepo"
	"github.com/go-petr/pet-ledger/internal/ledgerservice"
	"github.com/go-petr/pet-ledger/internal/memstore"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Server holds handlers router and configuration.
type Server struct {
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// DataStore bundles the storage the data server runs on.
type DataStore struct {
	Accounts     accountservice.Repo
	Finder       historyservice.AccountRepo
	Ledger       ledgerservice.Repo
	Transactions historyservice.Repo
	Idempotency  middleware.IdempotencyStore
	// Ping reports whether the store is reachable. Nil means always healthy.
	Ping func(ctx context.Context) error
}

// PostgresDataStore returns the data store backed by db.
func PostgresDataStore(db *sql.DB) DataStore {
	accounts := accountrepo.NewRepoPGS(db)

	return DataStore{
		Accounts:     accounts,
		Finder:       accounts,
		Ledger:       ledgerrepo.NewRepoPGS(db),
		Transactions: transactionrepo.NewRepoPGS(db),
		Idempotency:  idempotencyrepo.NewRepoPGS(db),
		Ping:         db.PingContext,
	}
}

// MemoryDataStore returns the data store backed by s.
func MemoryDataStore(s *memstore.Store) DataStore {
	accounts := s.Accounts()

	return DataStore{
		Accounts:     accounts,
		Finder:       accounts,
		Ledger:       s.Ledger(),
		Transactions: s.Transactions(),
		Idempotency:  s.Idempotency(),
	}
}

func health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		if ping != nil {
			if err := ping(gctx.Request.Context()); err != nil {
				zerolog.Ctx(gctx.Request.Context()).Error().Err(err).Msg("health check failed")
				gctx.JSON(http.StatusServiceUnavailable, web.Error(web.PublicError(err)))

				return
			}
		}

		gctx.JSON(http.StatusOK, web.Response{Data: gin.H{"status": "ok"}})
	}
}

func newEngine(logger zerolog.Logger, mw ...gin.HandlerFunc) (*gin.Engine, error) {
	if err := web.RegisterValidators(); err != nil {
		return nil, errors.New("cannot register decimal validator")
	}

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())
	engine.Use(mw...)

	return engine, nil
}

// NewData creates the data layer server: accounts, ledger and history.
func NewData(store DataStore, publisher eventpub.Publisher, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	accountService := accountservice.New(store.Accounts, config.StoreTimeout)
	ledgerService := ledgerservice.New(store.Ledger, publisher, config.StoreTimeout)
	historyService := historyservice.New(store.Finder, store.Transactions, config.StoreTimeout)

	accountHandler := accountdelivery.NewHandler(accountService)
	ledgerHandler := ledgerdelivery.NewHandler(ledgerService, historyService)

	engine, err := newEngine(logger, middleware.Idempotency(store.Idempotency))
	if err != nil {
		return nil, err
	}

	accountHandler.Register(engine)
	ledgerHandler.Register(engine)
	engine.GET("/health", health(store.Ping))

	return &Server{Engine: engine, Config: config}, nil
}

// BusinessDeps bundles the collaborators of the business server.
type BusinessDeps struct {
	Client      backoffice.AccountClient
	Audit       Audit
	Idempotency middleware.IdempotencyStore
	Ping        func(ctx context.Context) error
}

// Audit records and lists administrative actions.
type Audit interface {
	backoffice.Auditor
	auditdelivery.Service
}

// NewBusiness creates the business layer server: audited account administration.
func NewBusiness(deps BusinessDeps, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	accountHandler := accountdelivery.NewHandler(backoffice.New(deps.Client, deps.Audit, config.AuditActor))
	auditHandler := auditdelivery.NewHandler(deps.Audit)

	engine, err := newEngine(logger,
		middleware.Actor(config.AuditActor),
		middleware.Idempotency(deps.Idempotency),
	)
	if err != nil {
		return nil, err
	}

	accountHandler.Register(engine)
	engine.GET("/audit", auditHandler.List)
	engine.GET("/health", health(deps.Ping))

	return &Server{Engine: engine, Config: config}, nil
}
