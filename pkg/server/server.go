package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bastiangx/destserve/internal/logger"
	"github.com/bastiangx/destserve/internal/utils"
	"github.com/bastiangx/destserve/pkg/config"
	"github.com/bastiangx/destserve/pkg/debounce"
	"github.com/bastiangx/destserve/pkg/destinations"
	"github.com/bastiangx/destserve/pkg/selection"
	"github.com/bastiangx/destserve/pkg/session"
	"github.com/bastiangx/destserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"
)

// Server handles the IPC for destination autocomplete
type Server struct {
	index      *destinations.Index
	configPath string
	reader     *bufio.Reader
	logger     *log.Logger
	afterFunc  debounce.AfterFunc

	// mu guards config and engine, both replaced on reload
	mu     sync.RWMutex
	config *config.Config
	engine *suggest.Engine

	writeMu sync.Mutex
	encoder *msgpack.Encoder

	sessMu   sync.Mutex
	sessions map[string]*sessionEntry

	requestCount int
}

type sessionEntry struct {
	sess *session.Session

	mu sync.Mutex
	// lastInput is the request ID results are reported under.
	lastInput string
}

func (e *sessionEntry) setLastInput(id string) {
	e.mu.Lock()
	e.lastInput = id
	e.mu.Unlock()
}

func (e *sessionEntry) lastInputID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastInput
}

// Option configures a Server.
type Option func(*Server)

// WithIO replaces stdin and stdout.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(s *Server) {
		s.reader = bufio.NewReader(r)
		s.encoder = msgpack.NewEncoder(w)
	}
}

// WithAfterFunc replaces the debounce timer of every session.
func WithAfterFunc(fn debounce.AfterFunc) Option {
	return func(s *Server) {
		s.afterFunc = fn
	}
}

// NewServer creates a server over idx using stdin/stdout for IPC.
// configPath is watched for changes when reloading is enabled; it may be empty.
func NewServer(idx *destinations.Index, cfg *config.Config, configPath string, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if idx == nil {
		idx = destinations.Unavailable()
	}
	s := &Server{
		index:      idx,
		configPath: configPath,
		reader:     bufio.NewReader(os.Stdin),
		encoder:    msgpack.NewEncoder(os.Stdout),
		logger:     logger.New("server"),
		config:     cfg,
		engine:     suggest.NewEngine(idx, cfg.SearchOptions()),
		sessions:   make(map[string]*sessionEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start serves requests until the input ends. The config watcher, when
// enabled, runs next to the request loop and stops with it. Cancelling ctx
// stops the watcher and ends the loop before the next request is read.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Debug("Starting server")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if err := s.send(StatusResponse{Status: statusReady}); err != nil {
		return fmt.Errorf("failed to signal readiness: %w", err)
	}

	g.Go(func() error {
		defer cancel()
		return s.serve(ctx)
	})

	s.mu.RLock()
	reload := s.config.Server.EnableReload && s.configPath != ""
	s.mu.RUnlock()
	if reload {
		g.Go(func() error {
			return s.watchConfig(ctx)
		})
	}

	err := g.Wait()
	s.closeSessions()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serve decodes one request at a time. A request that fails to decode is
// answered with an error and skipped.
func (s *Server) serve(ctx context.Context) error {
	dec := msgpack.NewDecoder(s.reader)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debugf("Client disconnected (EOF) after %d requests", s.requestCount)
				return nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				s.logger.Warn("Input ended inside a request")
				return nil
			}
			return fmt.Errorf("failed to read request: %w", err)
		}

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.logger.Errorf("Unmarshaling request: %v", err)
			s.sendError("", "invalid request", 400)
			continue
		}
		s.requestCount++
		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req Request) {
	s.logger.Debug("Request", "id", req.ID, "action", req.Action, "session", req.Session)

	switch req.Action {
	case "open":
		s.handleOpen(req)
	case "input":
		s.handleInput(req)
	case "search":
		s.handleSearch(req)
	case "select":
		s.handleSelect(req)
	case "submit":
		s.handleSubmit(req)
	case "close":
		s.handleClose(req)
	case "info":
		s.handleInfo(req)
	case "":
		s.sendError(req.ID, "missing action", 400)
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

func (s *Server) handleOpen(req Request) {
	engine, cfg := s.current()
	id := uuid.NewString()
	entry := &sessionEntry{}

	entry.sess = session.New(engine, session.Options{
		Window:      cfg.DebounceWindow(),
		MinQueryLen: cfg.Search.MinQueryLen,
		AfterFunc:   s.afterFunc,
		OnView: func(v session.View) {
			if !v.Evaluated {
				return
			}
			s.sendResults(entry.lastInputID(), id, v)
		},
	})

	s.sessMu.Lock()
	s.sessions[id] = entry
	count := len(s.sessions)
	s.sessMu.Unlock()

	s.logger.Debug("Session opened", "session", id, "open", count)
	s.send(StatusResponse{ID: req.ID, Status: statusOK, Session: id})
}

func (s *Server) handleInput(req Request) {
	entry, ok := s.lookupSession(req)
	if !ok {
		return
	}

	entry.setLastInput(req.ID)

	// acknowledge first so the ack always precedes the results frame;
	// the session keeps the min length it was opened with across reloads
	status := statusCleared
	if utils.IsSearchable(req.Text, entry.sess.MinQueryLen()) {
		status = statusPending
	}
	s.send(StatusResponse{ID: req.ID, Status: status, Session: req.Session})

	if _, err := entry.sess.OnInput(req.Text); err != nil {
		s.logger.Warnf("Input on session %s: %v", req.Session, err)
	}
}

func (s *Server) handleSearch(req Request) {
	engine, _ := s.current()

	start := time.Now()
	res := engine.Evaluate(req.Text)
	elapsed := time.Since(start)

	view := session.View{
		Query:     res.Query,
		Exact:     res.Exact,
		Fuzzy:     res.Fuzzy,
		Evaluated: utils.IsSearchable(req.Text, engine.Options().MinQueryLen),
	}
	s.send(ResultsResponse{
		ID:        req.ID,
		Kind:      kindResults,
		Query:     view.Query,
		Exact:     toSuggestions(view.Exact),
		Fuzzy:     toSuggestions(view.Fuzzy),
		State:     view.State().String(),
		TimeTaken: elapsed.Microseconds(),
	})
}

func (s *Server) handleSelect(req Request) {
	entry, ok := s.lookupSession(req)
	if !ok {
		return
	}
	rec, code, err := s.resolveDestination(req)
	if err != nil {
		s.sendError(req.ID, err.Error(), code)
		return
	}

	if err := entry.sess.Select(rec.Term, rec.ID); err != nil {
		s.sendError(req.ID, err.Error(), 404)
		return
	}
	s.send(StatusResponse{ID: req.ID, Status: statusOK, Session: req.Session, DestID: rec.ID, Term: rec.Term})
}

// resolveDestination finds the record a select request names, by id or,
// without an id, by a term that only one destination carries.
func (s *Server) resolveDestination(req Request) (destinations.Record, int, error) {
	switch {
	case req.DestID != "":
		rec, found := s.index.Lookup(req.DestID)
		if !found {
			return rec, 404, fmt.Errorf("unknown destination: %s", req.DestID)
		}
		if req.Term != "" && req.Term != rec.Term {
			return rec, 400, fmt.Errorf("term %q does not belong to destination %s", req.Term, req.DestID)
		}
		return rec, 0, nil
	case req.Term != "":
		matches := s.index.ByTerm(req.Term)
		switch len(matches) {
		case 0:
			return destinations.Record{}, 404, fmt.Errorf("unknown destination term: %s", req.Term)
		case 1:
			return matches[0], 0, nil
		}
		return destinations.Record{}, 400, fmt.Errorf("term %q names %d destinations, send 'dest_id'", req.Term, len(matches))
	}
	return destinations.Record{}, 400, fmt.Errorf("missing 'dest_id' parameter")
}

func (s *Server) handleSubmit(req Request) {
	entry, ok := s.lookupSession(req)
	if !ok {
		return
	}

	term, id, err := entry.sess.Submit()
	switch {
	case errors.Is(err, selection.ErrNoSelection):
		s.sendError(req.ID, err.Error(), 409)
	case err != nil:
		s.sendError(req.ID, err.Error(), 404)
	default:
		s.logger.Debug("Submitted", "session", req.Session, "dest_id", id, "term", term)
		s.send(StatusResponse{ID: req.ID, Status: statusOK, Session: req.Session, DestID: id, Term: term})
	}
}

func (s *Server) handleClose(req Request) {
	s.sessMu.Lock()
	entry, ok := s.sessions[req.Session]
	delete(s.sessions, req.Session)
	s.sessMu.Unlock()

	if !ok {
		s.sendError(req.ID, fmt.Sprintf("unknown session: %s", req.Session), 404)
		return
	}
	entry.sess.Close()
	s.send(StatusResponse{ID: req.ID, Status: statusOK, Session: req.Session})
}

func (s *Server) handleInfo(req Request) {
	engine, _ := s.current()
	stats := engine.Stats()

	s.sessMu.Lock()
	open := len(s.sessions)
	s.sessMu.Unlock()

	s.send(InfoResponse{
		ID:           req.ID,
		Ready:        s.index.Ready(),
		Count:        stats["destinations"],
		Dropped:      stats["dropped"],
		Sessions:     open,
		CacheEntries: stats["cacheEntries"],
		CacheHits:    stats["cacheHits"],
		CacheMisses:  stats["cacheMisses"],
	})
}

func (s *Server) lookupSession(req Request) (*sessionEntry, bool) {
	if req.Session == "" {
		s.sendError(req.ID, "missing 'session' parameter", 400)
		return nil, false
	}
	s.sessMu.Lock()
	entry, ok := s.sessions[req.Session]
	s.sessMu.Unlock()
	if !ok {
		s.sendError(req.ID, fmt.Sprintf("unknown session: %s", req.Session), 404)
		return nil, false
	}
	return entry, true
}

func (s *Server) closeSessions() {
	s.sessMu.Lock()
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for id, entry := range s.sessions {
		entries = append(entries, entry)
		delete(s.sessions, id)
	}
	s.sessMu.Unlock()

	for _, entry := range entries {
		entry.sess.Close()
	}
	if len(entries) > 0 {
		s.logger.Debugf("Closed %d sessions", len(entries))
	}
}

// current returns the engine and config requests should use.
func (s *Server) current() (*suggest.Engine, *config.Config) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine, s.config
}

func (s *Server) sendResults(requestID, sessionID string, v session.View) {
	s.send(ResultsResponse{
		ID:        requestID,
		Kind:      kindResults,
		Session:   sessionID,
		Query:     v.Query,
		Exact:     toSuggestions(v.Exact),
		Fuzzy:     toSuggestions(v.Fuzzy),
		Searching: v.IsSearching,
		State:     v.State().String(),
	})
}

// send encodes one frame. Frames come from the request loop and from
// session timers, so writes are serialized.
func (s *Server) send(response any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.encoder.Encode(response); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
		return err
	}
	return nil
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
