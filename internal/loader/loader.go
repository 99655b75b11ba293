// Package loader fetches remote collection pages for a list view and exposes the
// latest result. Loads never block the caller, and a response may only commit if it
// belongs to the most recently issued load.
package loader

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rshade/stockdesk/internal/api"
	"github.com/rshade/stockdesk/internal/logging"
	"github.com/rshade/stockdesk/internal/query"
)

// Fetcher retrieves one page of a collection.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, p query.Params, token string) (api.Page[T], error)
}

// FetchFunc adapts a function to Fetcher.
type FetchFunc[T any] func(ctx context.Context, p query.Params, token string) (api.Page[T], error)

// Fetch calls f.
func (f FetchFunc[T]) Fetch(ctx context.Context, p query.Params, token string) (api.Page[T], error) {
	return f(ctx, p, token)
}

// CredentialSource supplies the bearer token. ok is false when no session exists.
type CredentialSource interface {
	Token(ctx context.Context) (token string, ok bool)
}

// Result is the state exposed to views.
type Result[T any] struct {
	Items      []T
	TotalCount int
	Loading    bool
	Err        error
	Params     query.Params
	Seq        uint64
	UpdatedAt  time.Time
}

// Kind classifies Err.
func (r Result[T]) Kind() api.Kind {
	return api.KindOf(r.Err)
}

// Loader loads pages of T. The zero value is not usable; use New.
type Loader[T any] struct {
	fetcher Fetcher[T]
	creds   CredentialSource
	group   singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	result    Result[T]
	seq       uint64
	last      query.Params
	hasLast   bool
	closed    bool
	listeners map[int]func(Result[T])
	nextID    int

	notifyMu sync.Mutex
}

// New returns a Loader using fetcher and creds.
func New[T any](fetcher Fetcher[T], creds CredentialSource) *Loader[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader[T]{
		fetcher:   fetcher,
		creds:     creds,
		ctx:       ctx,
		cancel:    cancel,
		listeners: make(map[int]func(Result[T])),
	}
}

// Subscribe registers fn to receive every committed result and returns a function
// that removes it. fn runs on the goroutine that committed the result and must not block.
func (l *Loader[T]) Subscribe(fn func(Result[T])) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.listeners, id)
		l.mu.Unlock()
	}
}

// Result returns a snapshot of the current result.
func (l *Loader[T]) Result() Result[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Load issues a fetch for p and returns its sequence number. It does not wait for the
// fetch. Without a credential (or a credential source) the result fails with
// api.ErrAuthRequired and no fetch runs. Load on a closed Loader returns 0.
func (l *Loader[T]) Load(ctx context.Context, p query.Params) uint64 {
	log := logging.FromContext(ctx)
	token, ok := l.token(ctx)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return 0
	}
	l.seq++
	seq := l.seq
	l.last = p
	l.hasLast = true
	l.result.Params = p
	l.result.Seq = seq

	if !ok || token == "" {
		l.result.Loading = false
		l.result.Err = api.ErrAuthRequired
		l.result.UpdatedAt = time.Now()
		l.mu.Unlock()

		log.Debug().Ctx(ctx).
			Str("component", "loader").
			Str("operation", "load").
			Uint64("seq", seq).
			Msg("no credential, skipping fetch")
		l.notify()
		return seq
	}

	l.result.Loading = true
	l.result.Err = nil
	l.wg.Add(1)
	l.mu.Unlock()
	l.notify()

	ch := l.group.DoChan(p.Key()+"\x00"+token, func() (any, error) {
		return l.fetch(ctx, p, token)
	})

	go func() {
		defer l.wg.Done()
		select {
		case res := <-ch:
			var page api.Page[T]
			if res.Val != nil {
				page, _ = res.Val.(api.Page[T])
			}
			l.commit(ctx, seq, p, page, res.Err)
		case <-ctx.Done():
			l.abandon(ctx, seq)
		case <-l.ctx.Done():
		}
	}()

	return seq
}

// token asks the credential source for a token. A nil source has none.
func (l *Loader[T]) token(ctx context.Context) (string, bool) {
	if l.creds == nil {
		return "", false
	}
	return l.creds.Token(ctx)
}

// fetch runs one shared request. Its context outlives the caller that started it so
// joined callers are unaffected by that caller's cancellation; Close cancels it.
func (l *Loader[T]) fetch(ctx context.Context, p query.Params, token string) (api.Page[T], error) {
	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(l.ctx, cancel)
	defer stop()
	defer cancel()

	return l.fetcher.Fetch(fctx, p, token)
}

// Reload re-issues the most recent load. It returns 0 if nothing was loaded yet.
func (l *Loader[T]) Reload(ctx context.Context) uint64 {
	l.mu.Lock()
	p, ok := l.last, l.hasLast
	l.mu.Unlock()
	if !ok {
		return 0
	}
	return l.Load(ctx, p)
}

// Bind loads whenever s commits new params, starting with its current params.
// The returned function stops listening.
func (l *Loader[T]) Bind(ctx context.Context, s *query.State) func() {
	unsubscribe := s.Subscribe(func(p query.Params) {
		l.Load(ctx, p)
	})
	l.Load(ctx, s.Params())
	return unsubscribe
}

// Clear drops items, count and error. In-flight loads still commit.
func (l *Loader[T]) Clear() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.result.Items = nil
	l.result.TotalCount = 0
	l.result.Err = nil
	l.result.UpdatedAt = time.Now()
	l.mu.Unlock()
	l.notify()
}

// Close cancels in-flight fetches and suppresses every pending commit. It is idempotent.
func (l *Loader[T]) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.cancel()
}

// Wait blocks until all issued loads have finished or been abandoned.
func (l *Loader[T]) Wait() {
	l.wg.Wait()
}

func (l *Loader[T]) commit(ctx context.Context, seq uint64, p query.Params, page api.Page[T], err error) {
	log := logging.FromContext(ctx)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	if seq != l.seq {
		current := l.seq
		l.mu.Unlock()
		log.Debug().Ctx(ctx).
			Str("component", "loader").
			Str("operation", "commit").
			Uint64("seq", seq).
			Uint64("latest", current).
			Msg("dropping superseded result")
		return
	}

	l.result.Loading = false
	l.result.Params = p
	l.result.UpdatedAt = time.Now()
	if err != nil {
		l.result.Err = err
	} else {
		items := page.Items
		if p.PageSize > 0 && len(items) > p.PageSize {
			items = items[:p.PageSize]
		}
		l.result.Items = slices.Clone(items)
		if l.result.Items == nil {
			l.result.Items = []T{}
		}
		l.result.TotalCount = max(page.TotalCount, 0)
		l.result.Err = nil
	}
	l.mu.Unlock()

	if err != nil {
		log.Warn().Ctx(ctx).
			Str("component", "loader").
			Str("operation", "commit").
			Str("kind", string(api.KindOf(err))).
			Err(err).
			Msg("load failed")
	}
	l.notify()
}

// abandon clears the loading flag when the caller's context ends before the fetch.
// Cancellation is not an error.
func (l *Loader[T]) abandon(ctx context.Context, seq uint64) {
	l.mu.Lock()
	if l.closed || seq != l.seq {
		l.mu.Unlock()
		return
	}
	l.result.Loading = false
	l.result.UpdatedAt = time.Now()
	l.mu.Unlock()

	logging.FromContext(ctx).Debug().Ctx(ctx).
		Str("component", "loader").
		Str("operation", "load").
		Err(ctx.Err()).
		Msg("load abandoned")
	l.notify()
}

func (l *Loader[T]) notify() {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	snap := l.snapshotLocked()
	fns := make([]func(Result[T]), 0, len(l.listeners))
	for _, fn := range l.listeners {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (l *Loader[T]) snapshotLocked() Result[T] {
	r := l.result
	r.Items = slices.Clone(l.result.Items)
	return r
}
