// Package selection tracks the destination a user picked from the suggestions.
//
// The held id always belongs to the text currently in the input: any edit
// that makes the input differ from the selected term drops the id, so a
// stale id is never submitted.
package selection

import "errors"

// ErrNoSelection is returned by Submit when no id is held.
var ErrNoSelection = errors.New("no destination selected")

// State is the selected (term, id) pair. The zero value holds nothing.
// State is not safe for concurrent use; its owner serializes access.
type State struct {
	id      string
	term    string
	hasID   bool
	hasTerm bool
}

// Select sets term and id together. An empty id records the term only.
func (s *State) Select(term, id string) {
	s.term = term
	s.hasTerm = true
	s.id = id
	s.hasID = id != ""
}

// OnInputChanged drops the id when text no longer equals the selected term.
// The term is kept until the next Select or Clear. It reports whether an id
// was dropped.
func (s *State) OnInputChanged(text string) bool {
	if !s.hasID || text == s.term {
		return false
	}
	s.id = ""
	s.hasID = false
	return true
}

// ID returns the selected id, if any.
func (s *State) ID() (string, bool) {
	return s.id, s.hasID
}

// Term returns the last selected term, if any.
func (s *State) Term() (string, bool) {
	return s.term, s.hasTerm
}

// Submit returns the pair to hand to the search submission.
func (s *State) Submit() (term, id string, err error) {
	if !s.hasID {
		return "", "", ErrNoSelection
	}
	return s.term, s.id, nil
}

// Clear forgets both fields.
func (s *State) Clear() {
	*s = State{}
}
