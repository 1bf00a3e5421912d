package debounce

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock runs scheduled callbacks synchronously from Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (ft *fakeTimer) Stop() bool {
	ft.clock.mu.Lock()
	defer ft.clock.mu.Unlock()
	active := !ft.stopped && !ft.fired
	ft.stopped = true
	return active
}

func (fc *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	t := &fakeTimer{clock: fc, at: fc.now + d, f: f}
	fc.timers = append(fc.timers, t)
	return t
}

func (fc *fakeClock) Advance(d time.Duration) {
	fc.mu.Lock()
	target := fc.now + d
	var due []*fakeTimer
	for _, t := range fc.timers {
		if !t.stopped && !t.fired && t.at <= target {
			t.fired = true
			due = append(due, t)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	fc.now = target
	fc.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (fc *fakeClock) Now() time.Duration {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.now
}

type recorder struct {
	mu    sync.Mutex
	texts []string
	at    []time.Duration
	clock *fakeClock
}

func (r *recorder) evaluate(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	if r.clock != nil {
		r.at = append(r.at, r.clock.Now())
	}
}

func (r *recorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

func TestRapidInputFiresOnce(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorder{clock: clock}
	c := New(300*time.Millisecond, rec.evaluate, WithAfterFunc(clock.AfterFunc))

	for _, text := range []string{"S", "Si", "Sin"} {
		c.OnInput(text)
		clock.Advance(50 * time.Millisecond)
	}
	assert.True(t, c.Pending())
	assert.Empty(t, rec.calls())

	clock.Advance(249 * time.Millisecond)
	assert.Empty(t, rec.calls(), "fired before the quiet window elapsed")

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"Sin"}, rec.calls())
	// the last keystroke was at 100ms
	assert.Equal(t, []time.Duration{400 * time.Millisecond}, rec.at)
	assert.False(t, c.Pending())

	clock.Advance(time.Second)
	assert.Len(t, rec.calls(), 1, "no duplicate fires")
}

func TestManyInputsWithinWindow(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorder{}
	c := New(300*time.Millisecond, rec.evaluate, WithAfterFunc(clock.AfterFunc))

	for _, text := range []string{"Ba", "Ban", "Bang", "Bangk", "Bangko", "Bangkok"} {
		c.OnInput(text)
		clock.Advance(10 * time.Millisecond)
	}
	clock.Advance(time.Second)
	assert.Equal(t, []string{"Bangkok"}, rec.calls())
}

func TestSeparateBurstsFireSeparately(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorder{}
	c := New(300*time.Millisecond, rec.evaluate, WithAfterFunc(clock.AfterFunc))

	c.OnInput("Par")
	clock.Advance(400 * time.Millisecond)
	c.OnInput("Paris")
	clock.Advance(400 * time.Millisecond)

	assert.Equal(t, []string{"Par", "Paris"}, rec.calls())
}

func TestStopCancelsPending(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorder{}
	c := New(300*time.Millisecond, rec.evaluate, WithAfterFunc(clock.AfterFunc))

	c.OnInput("Sing")
	clock.Advance(100 * time.Millisecond)
	c.Stop()
	clock.Advance(time.Second)

	assert.Empty(t, rec.calls())
	assert.False(t, c.Pending())
	assert.False(t, c.OnInput("Singapore"), "input after Stop is ignored")
	clock.Advance(time.Second)
	assert.Empty(t, rec.calls())
}

func TestStopWhileFiring(t *testing.T) {
	var fire func()
	afterFunc := func(_ time.Duration, f func()) Timer {
		fire = f
		return &fakeTimer{clock: &fakeClock{}}
	}
	rec := &recorder{}
	c := New(time.Millisecond, rec.evaluate, WithAfterFunc(afterFunc))

	c.OnInput("Tokyo")
	require.NotNil(t, fire)
	// the timer already started running when Stop took the lock
	c.Stop()
	fire()
	assert.Empty(t, rec.calls())
}

func TestSupersededTimerDoesNotFire(t *testing.T) {
	var fires []func()
	afterFunc := func(_ time.Duration, f func()) Timer {
		fires = append(fires, f)
		return &fakeTimer{clock: &fakeClock{}}
	}
	rec := &recorder{}
	c := New(time.Millisecond, rec.evaluate, WithAfterFunc(afterFunc))

	c.OnInput("Lon")
	c.OnInput("Lond")
	require.Len(t, fires, 2)

	// Stop lost the race: the first timer runs anyway
	fires[0]()
	assert.Empty(t, rec.calls())
	fires[1]()
	assert.Equal(t, []string{"Lond"}, rec.calls())
}

func TestShortInputClears(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorder{}
	cleared := 0
	c := New(300*time.Millisecond, rec.evaluate,
		WithAfterFunc(clock.AfterFunc),
		WithClear(func() { cleared++ }),
	)

	assert.True(t, c.OnInput("Se"))
	assert.False(t, c.OnInput("S"))
	assert.Equal(t, 1, cleared)
	assert.False(t, c.Pending(), "short input cancels the pending evaluation")

	assert.False(t, c.OnInput(""))
	assert.Equal(t, 2, cleared)

	clock.Advance(time.Second)
	assert.Empty(t, rec.calls())
	assert.Equal(t, "", c.Latest())
}

func TestMinLenOption(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorder{}
	c := New(0, rec.evaluate, WithAfterFunc(clock.AfterFunc), WithMinLen(4))
	assert.Equal(t, DefaultWindow, c.Window())

	assert.False(t, c.OnInput("Bal"))
	assert.True(t, c.OnInput("Bali"))
	clock.Advance(DefaultWindow)
	assert.Equal(t, []string{"Bali"}, rec.calls())
}

func TestMinLenCountsRunes(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorder{}
	c := New(300*time.Millisecond, rec.evaluate, WithAfterFunc(clock.AfterFunc))

	assert.False(t, c.OnInput("é"))
	assert.True(t, c.OnInput("éo"))
}

func TestSystemTimer(t *testing.T) {
	done := make(chan string, 4)
	c := New(20*time.Millisecond, func(text string) { done <- text })
	defer c.Stop()

	c.OnInput("Se")
	c.OnInput("Seo")
	c.OnInput("Seoul")

	select {
	case got := <-done:
		assert.Equal(t, "Seoul", got)
	case <-time.After(2 * time.Second):
		t.Fatal("evaluation never fired")
	}

	select {
	case got := <-done:
		t.Fatalf("unexpected second evaluation %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestConcurrentInput(t *testing.T) {
	var mu sync.Mutex
	count := 0
	c := New(500*time.Millisecond, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.OnInput("Osaka")
			}
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	}, 3*time.Second, 10*time.Millisecond)
	c.Stop()
}
