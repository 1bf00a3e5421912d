// Package session wires the engine, the debounce controller and the
// selection state into one input box.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bastiangx/destserve/pkg/debounce"
	"github.com/bastiangx/destserve/pkg/selection"
	"github.com/bastiangx/destserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// ErrClosed is returned by calls on a closed session.
var ErrClosed = errors.New("session closed")

// Options configures a Session.
type Options struct {
	// Window is the debounce quiet interval.
	Window time.Duration
	// MinQueryLen is the rune length below which suggestions are cleared.
	MinQueryLen int
	// OnView receives every new view. It runs on the caller's goroutine for
	// input and on the timer goroutine for results, and must not call back
	// into the session.
	OnView func(View)
	// AfterFunc replaces the timer primitive, mainly for tests.
	AfterFunc debounce.AfterFunc
}

// Session is safe for concurrent use.
type Session struct {
	engine suggest.Evaluator
	ctrl   *debounce.Controller
	onView func(View)
	minLen int

	// emitMu orders views: a result view is never emitted before the
	// searching view of the input that scheduled it.
	emitMu sync.Mutex

	mu     sync.Mutex
	sel    selection.State
	view   View
	closed bool
}

// New creates a session over engine.
func New(engine suggest.Evaluator, opts Options) *Session {
	s := &Session{
		engine: engine,
		onView: opts.OnView,
	}
	if opts.MinQueryLen <= 0 {
		opts.MinQueryLen = suggest.DefaultOptions().MinQueryLen
	}
	s.minLen = opts.MinQueryLen
	s.ctrl = debounce.New(opts.Window, s.evaluate,
		debounce.WithMinLen(opts.MinQueryLen),
		debounce.WithClear(s.cleared),
		debounce.WithAfterFunc(opts.AfterFunc),
	)
	return s
}

// OnInput handles a new value of the input box. It reports whether an
// evaluation was scheduled.
func (s *Session) OnInput(text string) (bool, error) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}
	if s.sel.OnInputChanged(text) {
		log.Debugf("Input %q diverged from selection, id dropped", text)
	}
	s.mu.Unlock()

	if !s.ctrl.OnInput(text) {
		return false, nil
	}

	s.mu.Lock()
	s.view = s.withSelection(View{Query: text, IsSearching: true})
	v := s.view
	s.mu.Unlock()
	s.emit(v)
	return true, nil
}

// MinQueryLen returns the rune length the session needs before it searches.
func (s *Session) MinQueryLen() int {
	return s.minLen
}

// cleared runs from the controller when short input clears the suggestions.
// OnInput holds emitMu.
func (s *Session) cleared() {
	s.mu.Lock()
	s.view = s.withSelection(View{Query: s.ctrl.Latest()})
	v := s.view
	s.mu.Unlock()
	s.emit(v)
}

// evaluate runs from the debounce timer.
func (s *Session) evaluate(text string) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	// newer input got emitMu between the timer firing and here
	if s.ctrl.Pending() || s.ctrl.Latest() != text {
		log.Debugf("Dropping superseded evaluation of %q", text)
		return
	}

	res := s.engine.Evaluate(text)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.view = s.withSelection(View{
		Query:     res.Query,
		Exact:     res.Exact,
		Fuzzy:     res.Fuzzy,
		Evaluated: true,
	})
	v := s.view
	s.mu.Unlock()
	s.emit(v)
}

// Select records the suggestion the user picked.
func (s *Session) Select(term, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.sel.Select(term, id)
	s.view = s.withSelection(s.view)
	return nil
}

// SelectIndex selects the n-th suggestion (0 based) of the current view.
func (s *Session) SelectIndex(n int) (suggest.MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return suggest.MatchResult{}, ErrClosed
	}
	all := s.view.Suggestions()
	if n < 0 || n >= len(all) {
		return suggest.MatchResult{}, fmt.Errorf("no suggestion %d, %d shown", n+1, len(all))
	}
	m := all[n]
	s.sel.Select(m.Record.Term, m.Record.ID)
	s.view = s.withSelection(s.view)
	return m, nil
}

// Submit returns the selected pair, or selection.ErrNoSelection.
func (s *Session) Submit() (term, id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", "", ErrClosed
	}
	return s.sel.Submit()
}

// ClearSelection forgets the selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Clear()
	s.view = s.withSelection(s.view)
}

// Snapshot returns the latest view.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Close stops the pending evaluation. No view is emitted after Close returns.
func (s *Session) Close() {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.ctrl.Stop()
}

func (s *Session) withSelection(v View) View {
	v.SelectedID, _ = s.sel.ID()
	v.SelectedTerm, _ = s.sel.Term()
	return v
}

func (s *Session) emit(v View) {
	if s.onView != nil {
		s.onView(v)
	}
}
