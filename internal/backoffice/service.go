// Package backoffice manages business layer of accounts: it proxies account
// operations to the data layer and audits administrative actions.
package backoffice

import (
	"context"
	"fmt"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// AccountClient reaches the data layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package backoffice
type AccountClient interface {
	Create(ctx context.Context, username, balance string) (domain.Account, error)
	Get(ctx context.Context, accountNumber int64) (domain.Account, error)
	ListByUsername(ctx context.Context, username string) ([]domain.Account, error)
	Delete(ctx context.Context, accountNumber int64) error
}

// Auditor records administrative actions.
type Auditor interface {
	LogAction(ctx context.Context, actor, action, details string)
}

// DefaultActor is recorded when neither the request nor the configuration names one.
const DefaultActor = "Admin"

// Service facilitates business layer logic of accounts.
type Service struct {
	client AccountClient
	audit  Auditor
	actor  string
}

// New returns the business layer account service.
func New(client AccountClient, audit Auditor, defaultActor string) *Service {
	if defaultActor == "" {
		defaultActor = DefaultActor
	}

	return &Service{client: client, audit: audit, actor: defaultActor}
}

func (s *Service) actorOf(ctx context.Context) string {
	if actor := web.Actor(ctx); actor != "" {
		return actor
	}

	return s.actor
}

// Create creates the account and audits the action.
func (s *Service) Create(ctx context.Context, username, balance string) (domain.Account, error) {
	account, err := s.client.Create(ctx, username, balance)
	if err != nil {
		return domain.Account{}, err
	}

	s.audit.LogAction(ctx, s.actorOf(ctx), domain.ActionAccountCreate,
		fmt.Sprintf("%s creating account for: %s", s.actorOf(ctx), username))

	return account, nil
}

// Get returns an open account.
func (s *Service) Get(ctx context.Context, accountNumber int64) (domain.Account, error) {
	return s.client.Get(ctx, accountNumber)
}

// ListByUsername returns the open accounts of username.
func (s *Service) ListByUsername(ctx context.Context, username string) ([]domain.Account, error) {
	return s.client.ListByUsername(ctx, username)
}

// Delete closes the account and audits the action.
func (s *Service) Delete(ctx context.Context, accountNumber int64) error {
	if err := s.client.Delete(ctx, accountNumber); err != nil {
		return err
	}

	s.audit.LogAction(ctx, s.actorOf(ctx), domain.ActionAccountDelete,
		fmt.Sprintf("%s deleted account %d", s.actorOf(ctx), accountNumber))

	return nil
}
