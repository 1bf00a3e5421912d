package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bastiangx/destserve/pkg/destinations"
	"github.com/bastiangx/destserve/pkg/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func runPrompt(t *testing.T, input string, opts Options) string {
	t.Helper()
	region := "Bangkok Metropolitan Region"
	idx := destinations.New([]destinations.Record{
		{ID: "sg", Term: "Singapore"},
		{ID: "sb", Term: "Sing Buri"},
		{ID: "bk", Term: "Bangkok", Region: &region},
	})
	var out bytes.Buffer
	opts.Window = 10 * time.Millisecond
	h := NewInputHandler(suggest.NewEngine(idx, suggest.DefaultOptions()), opts, strings.NewReader(input), &out)
	require.NoError(t, h.Start())
	return out.String()
}

func TestPromptShowsExactMatches(t *testing.T) {
	out := runPrompt(t, "Sing\n:quit\n", Options{})

	assert.Contains(t, out, "Found 2 destinations for 'Sing'")
	assert.Contains(t, out, "Singapore")
	assert.Contains(t, out, "Sing Buri")
}

func TestPromptDidYouMean(t *testing.T) {
	out := runPrompt(t, "Bangkk\n", Options{ShowRegion: true, ShowScores: true})

	assert.Contains(t, out, "Did you mean")
	assert.Contains(t, out, "Bangkok")
	assert.Contains(t, out, "Bangkok Metropolitan Region")
	assert.Contains(t, out, "popular 0.50")
}

func TestPromptNoResults(t *testing.T) {
	out := runPrompt(t, "Zzqx\n", Options{})
	assert.Contains(t, out, "No destinations found for 'Zzqx'")
}

func TestPromptSelectAndSubmit(t *testing.T) {
	out := runPrompt(t, "Sing\n:2\n:submit\n", Options{})

	assert.Contains(t, out, "selected: Sing Buri (id sb)")
	assert.Contains(t, out, "submit: Sing Buri (id sb)")
}

func TestPromptSelectionDroppedByNewInput(t *testing.T) {
	out := runPrompt(t, "Sing\n:1\nSinga\n:submit\n", Options{})

	assert.Contains(t, out, "selected: Singapore (id sg)")
	assert.NotContains(t, out, "submit:")
}

func TestPromptClear(t *testing.T) {
	out := runPrompt(t, "Sing\n:1\n:clear\n:submit\n", Options{})

	assert.Contains(t, out, "cleared")
	assert.NotContains(t, out, "submit:")
}

func TestPromptShortInput(t *testing.T) {
	out := runPrompt(t, "S\n:9\n:bogus\n", Options{})
	assert.NotContains(t, out, "Found")
	assert.NotContains(t, out, "selected:")
}

type slowEngine struct {
	*suggest.Engine
	slow  string
	delay time.Duration
}

func (e *slowEngine) Evaluate(text string) suggest.Result {
	if text == e.slow {
		time.Sleep(e.delay)
	}
	return e.Engine.Evaluate(text)
}

func TestPromptIgnoresLateResults(t *testing.T) {
	idx := destinations.New([]destinations.Record{
		{ID: "sg", Term: "Singapore"},
		{ID: "sb", Term: "Sing Buri"},
		{ID: "bk", Term: "Bangkok"},
	})
	engine := &slowEngine{
		Engine: suggest.NewEngine(idx, suggest.DefaultOptions()),
		slow:   "Bang",
		delay:  200 * time.Millisecond,
	}

	var out bytes.Buffer
	h := NewInputHandler(engine, Options{Window: 10 * time.Millisecond}, strings.NewReader("Bang\nSing\n"), &out)
	// 'Bang' times out; typing 'Sing' then waits for the slow evaluation
	h.wait = 100 * time.Millisecond
	require.NoError(t, h.Start())

	assert.NotContains(t, out.String(), "for 'Bang'")
	assert.Contains(t, out.String(), "Found 2 destinations for 'Sing'")
}
