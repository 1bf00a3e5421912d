// Package cli runs an interactive prompt over a search session for testing and debugging.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/destserve/internal/logger"
	"github.com/bastiangx/destserve/pkg/selection"
	"github.com/bastiangx/destserve/pkg/session"
	"github.com/bastiangx/destserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	termStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	fuzzyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("180"))
	regionStyle = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
)

// Options configures the prompt.
type Options struct {
	Window      time.Duration
	MinQueryLen int
	ShowRegion  bool
	ShowScores  bool
}

// InputHandler reads lines from in. Each line is typed into the session one
// rune at a time, so the debounce window coalesces it into one evaluation.
//
// Lines starting with ':' are commands:
//
//	:N       select the N-th shown suggestion
//	:submit  print the selected destination
//	:clear   drop the selection and the input
//	:quit    leave
type InputHandler struct {
	engine suggest.Evaluator
	opts   Options
	in     io.Reader
	out    *log.Logger
	views  chan session.View
	sess   *session.Session
	// wait bounds how long a line waits for its results
	wait time.Duration
}

// NewInputHandler prepares a prompt over engine writing to out.
func NewInputHandler(engine suggest.Evaluator, opts Options, in io.Reader, out io.Writer) *InputHandler {
	if opts.MinQueryLen <= 0 {
		opts.MinQueryLen = suggest.DefaultOptions().MinQueryLen
	}
	h := &InputHandler{
		engine: engine,
		opts:   opts,
		in:     in,
		out:    logger.NewWithConfig(out, "", log.InfoLevel, false),
		views:  make(chan session.View, 1),
		wait:   opts.Window*4 + time.Second,
	}
	h.sess = session.New(engine, session.Options{
		Window:      opts.Window,
		MinQueryLen: opts.MinQueryLen,
		OnView:      h.onView,
	})
	return h
}

func (h *InputHandler) onView(v session.View) {
	if !v.Evaluated {
		return
	}
	// only the latest result matters
	select {
	case <-h.views:
	default:
	}
	h.views <- v
}

// Start runs the prompt until :quit or the end of input.
func (h *InputHandler) Start() error {
	defer h.sess.Close()

	h.out.Print(headerStyle.Render("DestServe CLI"))
	h.out.Print("type a destination and press Enter (:N selects, :submit, :clear, :quit):")

	scanner := bufio.NewScanner(h.in)
	for {
		h.out.Print("> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return nil
		}

		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.HasPrefix(line, ":") {
			if quit := h.handleCommand(strings.TrimSpace(line[1:])); quit {
				return nil
			}
			continue
		}
		h.handleInput(line)
	}
}

// handleInput types line into the session and waits for its results.
func (h *InputHandler) handleInput(line string) {
	runes := []rune(line)
	h.drainViews()

	scheduled := false
	start := time.Now()
	if len(runes) == 0 {
		_, _ = h.sess.OnInput("")
	}
	for i := 1; i <= len(runes); i++ {
		ok, err := h.sess.OnInput(string(runes[:i]))
		if err != nil {
			log.Errorf("Input failed: %v", err)
			return
		}
		scheduled = ok
	}

	if !scheduled {
		log.Warnf("Type at least %d characters", h.opts.MinQueryLen)
		return
	}

	timeout := time.NewTimer(h.wait)
	defer timeout.Stop()
	for {
		select {
		case v := <-h.views:
			if v.Query != line {
				log.Debugf("Skipping late results for '%s'", v.Query)
				continue
			}
			log.Debugf("Took [ %v ] for '%s' (debounce included)", time.Since(start), line)
			h.render(v)
			return
		case <-timeout.C:
			log.Errorf("No results for '%s' in time", line)
			return
		}
	}
}

func (h *InputHandler) drainViews() {
	for {
		select {
		case <-h.views:
		default:
			return
		}
	}
}

func (h *InputHandler) handleCommand(cmd string) (quit bool) {
	switch cmd {
	case "quit", "q", "exit":
		return true
	case "submit":
		term, id, err := h.sess.Submit()
		if errors.Is(err, selection.ErrNoSelection) {
			log.Warn("Nothing selected, or the input changed since the selection")
			return false
		}
		if err != nil {
			log.Errorf("Submit failed: %v", err)
			return false
		}
		h.out.Print(okStyle.Render(fmt.Sprintf("submit: %s (id %s)", term, id)))
	case "clear":
		h.sess.ClearSelection()
		_, _ = h.sess.OnInput("")
		h.out.Print("cleared")
	default:
		n, err := strconv.Atoi(cmd)
		if err != nil {
			log.Errorf("Unknown command: :%s", cmd)
			return false
		}
		m, err := h.sess.SelectIndex(n - 1)
		if err != nil {
			log.Errorf("Cannot select: %v", err)
			return false
		}
		h.out.Print(okStyle.Render(fmt.Sprintf("selected: %s (id %s)", m.Record.Term, m.Record.ID)))
	}
	return false
}

func (h *InputHandler) render(v session.View) {
	switch v.State() {
	case session.StateExact:
		h.out.Printf("Found %d destinations for '%s':", len(v.Exact), v.Query)
	case session.StateNoResults:
		if len(v.Fuzzy) == 0 {
			h.out.Printf("No destinations found for '%s'", v.Query)
			return
		}
		h.out.Printf("No destinations found for '%s'. Did you mean:", v.Query)
	default:
		return
	}

	for i, m := range v.Suggestions() {
		style := termStyle
		if m.Source != suggest.SourceExact {
			style = fuzzyStyle
		}
		line := fmt.Sprintf("%2d. %s", i+1, style.Render(m.Record.Term))
		if h.opts.ShowRegion {
			if region := m.Record.RegionOr(""); region != "" {
				line += " " + regionStyle.Render(region)
			}
		}
		if h.opts.ShowScores && m.Score != nil {
			line += fmt.Sprintf(" (%s %.2f)", m.Source, *m.Score)
		}
		h.out.Print(line)
	}
}
