// Package auditlog records administrative actions in the background.
package auditlog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/eventpub"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// ErrClosed is reported for entries logged after Close.
var ErrClosed = errors.New("audit log closed")

// Repo provides the audit storage.
type Repo interface {
	Append(ctx context.Context, e domain.AuditEntry) (domain.AuditEntry, error)
	List(ctx context.Context, limit, offset int32) ([]domain.AuditEntry, error)
}

// DefaultMaxRetries is the number of retries of a failed append when Options leaves it unset.
const DefaultMaxRetries = 5

// Options tunes the background pipeline.
type Options struct {
	QueueSize  int
	Workers    int
	MaxRetries uint64
	Backoff    time.Duration
	Timeout    time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}

	if o.Workers <= 0 {
		o.Workers = 1
	}

	if o.MaxRetries == 0 {
		o.MaxRetries = DefaultMaxRetries
	}

	if o.Backoff <= 0 {
		o.Backoff = 100 * time.Millisecond
	}

	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}

	return o
}

// Logger appends audit entries asynchronously so the audited request never waits for storage.
type Logger struct {
	repo      Repo
	publisher eventpub.Publisher
	log       zerolog.Logger
	opts      Options

	mu     sync.RWMutex
	closed bool
	queue  chan domain.AuditEntry

	workers conc.WaitGroup
	done    chan struct{}
	once    sync.Once
}

// New starts the workers and returns the audit logger.
func New(repo Repo, publisher eventpub.Publisher, logger zerolog.Logger, opts Options) *Logger {
	if publisher == nil {
		publisher = eventpub.NopPublisher{}
	}

	opts = opts.withDefaults()

	l := &Logger{
		repo:      repo,
		publisher: publisher,
		log:       logger.With().Str("component", "auditlog").Logger(),
		opts:      opts,
		queue:     make(chan domain.AuditEntry, opts.QueueSize),
		done:      make(chan struct{}),
	}

	for i := 0; i < opts.Workers; i++ {
		l.workers.Go(l.work)
	}

	return l
}

// LogAction enqueues an audit entry and returns immediately.
// Entries that cannot be enqueued are logged with all their fields.
func (l *Logger) LogAction(ctx context.Context, actor, action, details string) {
	e := domain.AuditEntry{
		Actor:     actor,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		l.lost(zerolog.Ctx(ctx), e, ErrClosed)
		return
	}

	select {
	case l.queue <- e:
	default:
		l.lost(zerolog.Ctx(ctx), e, errors.New("audit queue is full"))
	}
}

func (l *Logger) lost(log *zerolog.Logger, e domain.AuditEntry, err error) {
	if log.GetLevel() == zerolog.Disabled {
		log = &l.log
	}

	log.Error().
		Err(err).
		Str("actor", e.Actor).
		Str("action", e.Action).
		Str("details", e.Details).
		Time("at", e.CreatedAt).
		Msg("audit entry dropped")
}

func (l *Logger) work() {
	for e := range l.queue {
		l.write(e)
	}
}

func (l *Logger) write(e domain.AuditEntry) {
	ctx := l.log.WithContext(context.Background())

	var stored domain.AuditEntry

	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()

		var err error

		stored, err = l.repo.Append(attemptCtx, e)
		if err != nil && !errorspkg.IsRetryable(err) {
			return backoff.Permanent(err)
		}

		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.opts.Backoff
	b.MaxElapsedTime = 0

	notify := func(err error, next time.Duration) {
		l.log.Warn().Err(err).Dur("retry_in", next).Str("action", e.Action).Msg("cannot append audit entry")
	}

	if err := backoff.RetryNotify(op, backoff.WithMaxRetries(b, l.opts.MaxRetries), notify); err != nil {
		l.lost(&l.log, e, fmt.Errorf("append: %w", err))
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	if err := l.publisher.Publish(pubCtx, strconv.FormatInt(stored.ID, 10), stored); err != nil {
		l.log.Warn().Err(err).Int64("audit_id", stored.ID).Msg("cannot publish audit event")
	}
}

// List returns one page of audit entries in the order they were recorded.
func (l *Logger) List(ctx context.Context, limit, offset int32) ([]domain.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	return l.repo.List(ctx, limit, offset)
}

// Close stops accepting entries and waits until the queued ones are written
// or ctx is done.
func (l *Logger) Close(ctx context.Context) error {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.queue)
		l.mu.Unlock()

		go func() {
			l.workers.Wait()
			close(l.done)
		}()
	})

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain audit queue: %w", ctx.Err())
	}
}
