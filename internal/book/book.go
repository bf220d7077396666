// Package book holds the live ledger for the lifetime of the process.
//
// A Book is hydrated once from a blob store, applies intents one at a time
// through the ledger reducer, and writes each new state back in the
// background. A failed write never rolls back the in-memory ledger; it is
// logged, reported to the save error handler and kept as LastSaveError.
package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/simonvc/simplebalance/internal/ledger"
	"github.com/simonvc/simplebalance/internal/store"
)

// CorruptKey receives a copy of a saved ledger that could not be decoded.
const CorruptKey = ledger.RootKey + ".corrupt"

// ErrClosed is returned by Dispatch after Close.
var ErrClosed = errors.New("book is closed")

type Option func(*Book)

func WithLogger(l *slog.Logger) Option {
	return func(b *Book) { b.log = l }
}

func WithReducer(r *ledger.Reducer) Option {
	return func(b *Book) { b.reducer = r }
}

// WithSaveTimeout bounds each background write.
func WithSaveTimeout(d time.Duration) Option {
	return func(b *Book) { b.saveTimeout = d }
}

// WithSaveErrorHandler is called from the background writer whenever a
// write fails.
func WithSaveErrorHandler(fn func(error)) Option {
	return func(b *Book) { b.onSaveError = fn }
}

type Book struct {
	blobs       store.BlobStore
	reducer     *ledger.Reducer
	log         *slog.Logger
	saveTimeout time.Duration
	onSaveError func(error)

	mu     sync.Mutex // serializes Dispatch
	state  ledger.State
	closed bool

	// writeMu is held while a pending state is taken and written, so writes
	// land in dispatch order.
	writeMu sync.Mutex
	saveMu  sync.Mutex
	pending *ledger.State
	lastErr error

	wake      chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// Open loads the saved ledger from blobs and starts the background writer.
// A missing ledger starts empty. A corrupt one also starts empty, after its
// bytes are copied to CorruptKey.
func Open(ctx context.Context, blobs store.BlobStore, opts ...Option) (*Book, error) {
	b := &Book{
		blobs:       blobs,
		reducer:     ledger.NewReducer(),
		log:         slog.Default(),
		saveTimeout: 10 * time.Second,
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	state, err := b.hydrate(ctx)
	if err != nil {
		return nil, err
	}
	b.state = state

	go b.run()
	return b, nil
}

func (b *Book) hydrate(ctx context.Context) (ledger.State, error) {
	data, err := b.blobs.Get(ctx, ledger.RootKey)
	if errors.Is(err, store.ErrNotFound) {
		b.log.Info("no saved ledger, starting empty")
		return ledger.NewState(), nil
	}
	if err != nil {
		return ledger.State{}, fmt.Errorf("load ledger: %w", err)
	}

	s, err := ledger.Decode(data)
	if err != nil {
		b.log.Warn("saved ledger is corrupt, starting empty",
			slog.String("backup_key", CorruptKey),
			slog.Any("error", err),
		)
		if perr := b.blobs.Put(ctx, CorruptKey, data); perr != nil {
			b.log.Error("could not back up corrupt ledger", slog.Any("error", perr))
		}
		return ledger.NewState(), nil
	}

	b.log.Info("ledger loaded", slog.Int("accounts", len(s.Accounts)))
	return s, nil
}

// Snapshot returns the current ledger. The returned value must be treated
// as read-only; it is shared with later snapshots.
func (b *Book) Snapshot() ledger.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Dispatch applies intent to the current ledger and schedules a save of the
// result. On error the ledger is unchanged and nothing is saved.
func (b *Book) Dispatch(intent ledger.Intent) (ledger.State, error) {
	_, next, err := b.Transition(intent)
	return next, err
}

// Transition is Dispatch that also returns the state the intent was
// applied to, so callers can tell what changed.
func (b *Book) Transition(intent ledger.Intent) (prev, next ledger.State, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev = b.state
	if b.closed {
		return prev, prev, ErrClosed
	}

	next, err = b.reducer.Apply(prev, intent)
	if err != nil {
		return prev, prev, err
	}
	b.state = next
	b.schedule(next)

	b.log.Debug("intent applied", slog.String("intent", intent.Kind()))
	return prev, next, nil
}

// LastSaveError returns the error of the most recent write, or nil if it
// succeeded.
func (b *Book) LastSaveError() error {
	b.saveMu.Lock()
	defer b.saveMu.Unlock()
	return b.lastErr
}

// Flush writes any pending state now and returns the outcome of the most
// recent write.
func (b *Book) Flush() error {
	b.flush()
	return b.LastSaveError()
}

// Close stops accepting intents, writes the pending state and stops the
// background writer.
func (b *Book) Close(ctx context.Context) error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
		close(b.done)
	})

	select {
	case <-b.stopped:
		return b.LastSaveError()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Book) schedule(s ledger.State) {
	b.saveMu.Lock()
	b.pending = &s
	b.saveMu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Book) run() {
	defer close(b.stopped)
	for {
		select {
		case <-b.wake:
			b.flush()
		case <-b.done:
			b.flush()
			return
		}
	}
}

// flush writes the latest pending state, if any. States scheduled while a
// write is in flight collapse into one write of the newest.
func (b *Book) flush() {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	b.saveMu.Lock()
	s := b.pending
	b.pending = nil
	b.saveMu.Unlock()

	if s == nil {
		return
	}

	err := b.save(*s)

	b.saveMu.Lock()
	b.lastErr = err
	b.saveMu.Unlock()

	if err != nil {
		b.log.Error("ledger save failed", slog.Any("error", err))
		if b.onSaveError != nil {
			b.onSaveError(err)
		}
	}
}

func (b *Book) save(s ledger.State) error {
	data, err := ledger.Encode(s)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.saveTimeout)
	defer cancel()

	if err := b.blobs.Put(ctx, ledger.RootKey, data); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}
