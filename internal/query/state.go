package query

import (
	"sync"
	"time"

	"github.com/rshade/stockdesk/internal/pagination"
)

// DefaultDebounce is the quiet period after the last search keystroke before the
// search text is committed.
const DefaultDebounce = 500 * time.Millisecond

// Listener receives committed Params. Listeners run on the goroutine that committed
// the change (the caller of a setter, or the debounce timer) and must not call back
// into the State synchronously.
type Listener func(Params)

// State owns search text, sort, category and page for one list view and emits the
// derived Params whenever a committed value changes.
//
// Search text is debounced: SetSearch only records the pending text and restarts the
// timer; the text is committed (and the page reset to 1) once the quiet period elapses.
// Category and page-size changes also reset the page. Sort changes keep the page.
type State struct {
	mu        sync.Mutex
	params    Params
	pending   string
	debounce  time.Duration
	timer     *time.Timer
	gen       uint64
	closed    bool
	listeners map[int]Listener
	nextID    int

	// emitMu serializes emissions so listeners observe commits in order.
	emitMu sync.Mutex
	last   Params
}

// Option configures a State.
type Option func(*State)

// WithDebounce sets the search quiet period. Zero commits search text immediately.
func WithDebounce(d time.Duration) Option {
	return func(s *State) {
		if d < 0 {
			d = 0
		}
		s.debounce = d
	}
}

// WithParams sets the initial committed parameters. An empty category is kept, for
// collections that are not split by category; an unknown one becomes CategoryCompany.
func WithParams(p Params) Option {
	return func(s *State) {
		if p.Page < pagination.MinPage {
			p.Page = pagination.MinPage
		}
		if p.PageSize < pagination.MinPageSize {
			p.PageSize = pagination.DefaultPageSize
		}
		if p.Category != "" && !p.Category.Valid() {
			p.Category = CategoryCompany
		}
		s.params = p
		s.pending = p.SearchText
	}
}

// New creates a State starting from DefaultParams.
func New(opts ...Option) *State {
	s := &State{
		params:    DefaultParams(),
		debounce:  DefaultDebounce,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.last = s.params
	return s
}

// Subscribe registers fn for committed changes and returns a function that removes it.
func (s *State) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Params returns the committed parameters.
func (s *State) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// PendingSearch returns the search text as typed, committed or not.
func (s *State) PendingSearch() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// SetSearch records text and restarts the debounce timer.
func (s *State) SetSearch(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.pending = text
	s.gen++
	s.stopTimerLocked()

	if s.debounce == 0 {
		s.commitSearchLocked()
		s.mu.Unlock()
		s.emit()
		return
	}

	gen := s.gen
	s.timer = time.AfterFunc(s.debounce, func() { s.fire(gen) })
	s.mu.Unlock()
}

// Flush commits any pending search text immediately.
func (s *State) Flush() {
	s.mu.Lock()
	if s.closed || s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.gen++
	s.stopTimerLocked()
	s.commitSearchLocked()
	s.mu.Unlock()
	s.emit()
}

// fire is the debounce timer callback. Timers from superseded keystrokes or a closed
// State are ignored.
func (s *State) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.commitSearchLocked()
	s.mu.Unlock()
	s.emit()
}

func (s *State) commitSearchLocked() {
	if s.params.SearchText == s.pending {
		return
	}
	s.params.SearchText = s.pending
	s.params.Page = pagination.MinPage
}

func (s *State) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// SetSort changes the sort. The current page is kept.
func (s *State) SetSort(by pagination.Sort) {
	s.update(func(p *Params) { p.Sort = by })
}

// SetCategory changes the inventory category and resets the page.
func (s *State) SetCategory(c Category) error {
	if !c.Valid() {
		return ErrInvalidCategory
	}
	s.update(func(p *Params) {
		if p.Category != c {
			p.Category = c
			p.Page = pagination.MinPage
		}
	})
	return nil
}

// ToggleCategory switches between company and supplier.
func (s *State) ToggleCategory() {
	s.update(func(p *Params) {
		p.Category = p.Category.Other()
		p.Page = pagination.MinPage
	})
}

// SetPage moves to page, clamped to at least 1. The upper bound depends on the
// result size and is applied by the page model.
func (s *State) SetPage(page int) {
	if page < pagination.MinPage {
		page = pagination.MinPage
	}
	s.update(func(p *Params) { p.Page = page })
}

// SetPageSize changes the page size and resets the page.
func (s *State) SetPageSize(n int) error {
	if err := pagination.ValidatePageSize(n); err != nil {
		return err
	}
	s.update(func(p *Params) {
		if p.PageSize != n {
			p.PageSize = n
			p.Page = pagination.MinPage
		}
	})
	return nil
}

// Close cancels the debounce timer and stops all further emissions.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
	s.stopTimerLocked()
	s.listeners = make(map[int]Listener)
}

func (s *State) update(fn func(*Params)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	fn(&s.params)
	s.mu.Unlock()
	s.emit()
}

// emit notifies listeners of the current committed params unless they equal the
// last emitted (or initial) value.
func (s *State) emit() {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	p := s.params
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	if p == s.last {
		return
	}
	s.last = p

	for _, l := range listeners {
		l(p)
	}
}
