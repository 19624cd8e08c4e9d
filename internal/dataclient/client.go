// Package dataclient is the HTTP client the business layer uses to reach the data layer.
package dataclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Options tunes timeouts and retries.
type Options struct {
	Timeout    time.Duration
	MaxRetries uint64
	Backoff    time.Duration
	HTTPClient *http.Client
}

// Client calls the data layer account routes.
type Client struct {
	baseURL string
	http    *http.Client
	opts    Options
}

// New returns a client of the data layer listening on baseURL.
func New(baseURL string, opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	if opts.Backoff <= 0 {
		opts.Backoff = 100 * time.Millisecond
	}

	return &Client{baseURL: baseURL, http: opts.HTTPClient, opts: opts}
}

// known maps the error messages of the data layer back to domain errors.
var known = func() map[string]error {
	m := map[string]error{}
	for _, err := range []error{
		domain.ErrAccountNotFound,
		domain.ErrInvalidBalance,
		domain.ErrInvalidUsername,
		domain.ErrInvalidAccountNumber,
		domain.ErrInvalidAmount,
		domain.ErrInsufficientFunds,
		domain.ErrSameAccount,
		domain.ErrRequestInProgress,
		domain.ErrIdempotencyKeyReused,
		errorspkg.ErrUpstreamUnavailable,
		errorspkg.ErrInternal,
	} {
		m[err.Error()] = err
	}

	return m
}()

func kindOfStatus(status int) errorspkg.Kind {
	switch status {
	case http.StatusNotFound:
		return errorspkg.KindNotFound
	case http.StatusPaymentRequired:
		return errorspkg.KindInsufficientFunds
	case http.StatusConflict:
		return errorspkg.KindDuplicate
	default:
		return errorspkg.KindInvalidInput
	}
}

// decodeError turns a 4xx response into a domain error.
func decodeError(status int, body []byte) error {
	var res web.Response
	if err := json.Unmarshal(body, &res); err != nil || res.Error == "" {
		return errorspkg.New(kindOfStatus(status), http.StatusText(status))
	}

	if err, ok := known[res.Error]; ok {
		return err
	}

	return errorspkg.New(kindOfStatus(status), res.Error)
}

// idempotencyKey derives the key sent downstream from the inbound one so that
// a retried inbound request maps to the same downstream key.
func idempotencyKey(ctx context.Context, method, path string) string {
	if key := web.IdempotencyKey(ctx); key != "" {
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key+" "+method+" "+path)).String()
	}

	return uuid.NewString()
}

// do sends the request, retrying network failures, 5xx responses and
// in-progress conflicts. out receives the data field of the response.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	l := zerolog.Ctx(ctx)

	var payload []byte

	if body != nil {
		var err error

		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	var key string
	if method != http.MethodGet {
		key = idempotencyKey(ctx, method, path)
	}

	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}

		req.Header.Set("Content-Type", "application/json")

		if key != "" {
			req.Header.Set(web.IdempotencyKeyHeader, key)
		}

		if id := web.RequestID(ctx); id != "" {
			req.Header.Set(web.RequestIDHeader, id)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("data layer answered %d", resp.StatusCode)
		case resp.StatusCode >= http.StatusBadRequest:
			derr := decodeError(resp.StatusCode, data)
			if errors.Is(derr, domain.ErrRequestInProgress) {
				return derr
			}

			return backoff.Permanent(derr)
		}

		if out == nil {
			return nil
		}

		envelope := web.Response{Data: out}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}

		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.Backoff
	b.MaxElapsedTime = 0

	notify := func(err error, next time.Duration) {
		l.Warn().Err(err).Str("method", method).Str("path", path).Dur("retry_in", next).Msg("data layer call failed")
	}

	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(b, c.opts.MaxRetries), ctx), notify)
	if err == nil {
		return nil
	}

	var appErr *errorspkg.Error
	if errors.As(err, &appErr) && appErr.Kind() != errorspkg.KindInternal {
		return appErr
	}

	l.Error().Err(err).Str("method", method).Str("path", path).Msg("data layer unavailable")

	return errorspkg.ErrUpstreamUnavailable
}

type accountData struct {
	Account domain.Account `json:"account"`
}

// Create creates an account through the data layer.
func (c *Client) Create(ctx context.Context, username, balance string) (domain.Account, error) {
	body := struct {
		HolderUsername string      `json:"holder_username"`
		Balance        json.Number `json:"balance"`
	}{username, json.Number(balance)}

	var out accountData
	if err := c.do(ctx, http.MethodPost, "/accounts", body, &out); err != nil {
		return domain.Account{}, err
	}

	return out.Account, nil
}

// Get returns an open account.
func (c *Client) Get(ctx context.Context, accountNumber int64) (domain.Account, error) {
	var out accountData
	if err := c.do(ctx, http.MethodGet, "/accounts/"+strconv.FormatInt(accountNumber, 10), nil, &out); err != nil {
		return domain.Account{}, err
	}

	return out.Account, nil
}

// ListByUsername returns the open accounts of username.
func (c *Client) ListByUsername(ctx context.Context, username string) ([]domain.Account, error) {
	var out struct {
		Accounts []domain.Account `json:"accounts"`
	}

	q := url.Values{"username": {username}}
	if err := c.do(ctx, http.MethodGet, "/accounts?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}

	if out.Accounts == nil {
		out.Accounts = []domain.Account{}
	}

	return out.Accounts, nil
}

// Delete closes an account.
func (c *Client) Delete(ctx context.Context, accountNumber int64) error {
	return c.do(ctx, http.MethodPost, "/accounts/"+strconv.FormatInt(accountNumber, 10)+"/delete", nil, nil)
}
