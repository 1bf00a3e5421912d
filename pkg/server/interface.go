/*
Package server implements msgpack IPC for destination autocomplete.

The server reads a stream of msgpack maps from stdin and writes msgpack maps
to stdout. Logs never go to stdout.

# IPC

Every request carries an ID and an action. Clients typing into a search box
open a session and send each new value of the box as an input:

	{"id": "1", "action": "open"}
	{"id": "1", "status": "ok", "session": "6f1c..."}

	{"id": "2", "action": "input", "session": "6f1c...", "text": "Sing"}
	{"id": "2", "status": "pending"}

Inputs are debounced per session. Once the quiet window passes, the results
for the latest input arrive asynchronously, tagged with that input's ID:

	{"id": "2", "kind": "results", "session": "6f1c...", "q": "Sing",
	 "x": [{"id": "1", "t": "Singapore", "src": "exact"}], "f": [], "searching": false}

Input shorter than the minimum query length is answered with status
"cleared" and no results follow.

Picking a suggestion and submitting it:

	{"id": "3", "action": "select", "session": "6f1c...", "dest_id": "1"}
	{"id": "4", "action": "submit", "session": "6f1c..."}
	{"id": "4", "status": "ok", "dest_id": "1", "term": "Singapore"}

A later input that differs from the selected term drops the selection, and
submit then fails with code 409.

"search" evaluates text synchronously without a session, "close" ends a
session and "info" reports index and cache counters.

# Errors

Failed requests are answered with:

	{"id": "4", "e": "no destination selected", "c": 409}

Codes: 400 bad request, 404 unknown session or destination,
409 nothing selected, 500 internal error.
*/
package server

import "github.com/bastiangx/destserve/pkg/suggest"

// Request is the envelope for every action.
type Request struct {
	ID      string `msgpack:"id"`
	Action  string `msgpack:"action"`
	Session string `msgpack:"session,omitempty"`
	Text    string `msgpack:"text,omitempty"`
	Term    string `msgpack:"term,omitempty"`
	DestID  string `msgpack:"dest_id,omitempty"`
}

// Suggestion is one match on the wire.
type Suggestion struct {
	ID     string  `msgpack:"id"`
	Term   string  `msgpack:"t"`
	Region string  `msgpack:"r,omitempty"`
	Score  float64 `msgpack:"s,omitempty"`
	Source string  `msgpack:"src"`
}

// ResultsResponse carries the outcome of an evaluation.
type ResultsResponse struct {
	ID        string       `msgpack:"id"`
	Kind      string       `msgpack:"kind"`
	Session   string       `msgpack:"session,omitempty"`
	Query     string       `msgpack:"q"`
	Exact     []Suggestion `msgpack:"x"`
	Fuzzy     []Suggestion `msgpack:"f"`
	Searching bool         `msgpack:"searching"`
	State     string       `msgpack:"state"`
	TimeTaken int64        `msgpack:"t,omitempty"`
}

// StatusResponse acknowledges open, input, select, submit and close.
type StatusResponse struct {
	ID      string `msgpack:"id"`
	Status  string `msgpack:"status"`
	Session string `msgpack:"session,omitempty"`
	DestID  string `msgpack:"dest_id,omitempty"`
	Term    string `msgpack:"term,omitempty"`
}

// InfoResponse reports server counters.
type InfoResponse struct {
	ID           string `msgpack:"id"`
	Ready        bool   `msgpack:"ready"`
	Count        int    `msgpack:"count"`
	Dropped      int    `msgpack:"dropped"`
	Sessions     int    `msgpack:"sessions"`
	CacheEntries int    `msgpack:"cache_entries"`
	CacheHits    int    `msgpack:"cache_hits"`
	CacheMisses  int    `msgpack:"cache_misses"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

const (
	kindResults = "results"

	statusReady   = "ready"
	statusOK      = "ok"
	statusPending = "pending"
	statusCleared = "cleared"
)

func toSuggestions(matches []suggest.MatchResult) []Suggestion {
	out := make([]Suggestion, 0, len(matches))
	for _, m := range matches {
		s := Suggestion{
			ID:     m.Record.ID,
			Term:   m.Record.Term,
			Region: m.Record.RegionOr(""),
			Source: m.Source.String(),
		}
		if m.Score != nil {
			s.Score = *m.Score
		}
		out = append(out, s)
	}
	return out
}
