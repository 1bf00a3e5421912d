package session

import "github.com/bastiangx/destserve/pkg/suggest"

// State classifies what a presenter should show.
type State uint8

const (
	// StateNothing: no query worth evaluating.
	StateNothing State = iota
	// StateSearching: a debounced evaluation is pending.
	StateSearching
	// StateExact: at least one exact match.
	StateExact
	// StateNoResults: nothing matched exactly; Fuzzy holds did-you-mean suggestions, possibly none.
	StateNoResults
)

func (s State) String() string {
	switch s {
	case StateNothing:
		return "nothing"
	case StateSearching:
		return "searching"
	case StateExact:
		return "exact"
	case StateNoResults:
		return "no-results"
	}
	return "unknown"
}

// View is what presenters render after every input or evaluation.
type View struct {
	Query       string
	Exact       []suggest.MatchResult
	Fuzzy       []suggest.MatchResult
	IsSearching bool
	// Evaluated is set once the engine ran for Query.
	Evaluated    bool
	SelectedID   string
	SelectedTerm string
}

// State reports which of the four presenter states v is in.
func (v View) State() State {
	switch {
	case v.IsSearching:
		return StateSearching
	case len(v.Exact) > 0:
		return StateExact
	case v.Evaluated:
		return StateNoResults
	}
	return StateNothing
}

// Suggestions returns exact matches followed by fuzzy ones.
func (v View) Suggestions() []suggest.MatchResult {
	out := make([]suggest.MatchResult, 0, len(v.Exact)+len(v.Fuzzy))
	out = append(out, v.Exact...)
	return append(out, v.Fuzzy...)
}
