package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDivergentInputClearsID(t *testing.T) {
	var s State
	s.Select("Singapore", "abc")

	id, ok := s.ID()
	require.True(t, ok)
	assert.Equal(t, "abc", id)

	assert.True(t, s.OnInputChanged("Singap"))
	_, ok = s.ID()
	assert.False(t, ok)

	term, ok := s.Term()
	assert.True(t, ok)
	assert.Equal(t, "Singapore", term, "term is kept after the id is dropped")

	_, _, err := s.Submit()
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestOnInputChanged(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		keepsID bool
	}{
		{"same text", "Bangkok", true},
		{"prefix", "Bangko", false},
		{"case differs", "bangkok", false},
		{"trailing space", "Bangkok ", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s State
			s.Select("Bangkok", "7")
			s.OnInputChanged(tt.text)
			_, ok := s.ID()
			assert.Equal(t, tt.keepsID, ok)
		})
	}
}

func TestRetypingDoesNotRestoreID(t *testing.T) {
	var s State
	s.Select("Paris", "p1")
	s.OnInputChanged("Pari")
	s.OnInputChanged("Paris")

	_, ok := s.ID()
	assert.False(t, ok)
}

func TestSubmit(t *testing.T) {
	var s State
	_, _, err := s.Submit()
	require.ErrorIs(t, err, ErrNoSelection)

	s.Select("Tokyo", "t1")
	term, id, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, "Tokyo", term)
	assert.Equal(t, "t1", id)

	s.Select("Tokyo Bay", "")
	_, _, err = s.Submit()
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestClear(t *testing.T) {
	var s State
	s.Select("Seoul", "s1")
	s.Clear()

	_, hasID := s.ID()
	_, hasTerm := s.Term()
	assert.False(t, hasID)
	assert.False(t, hasTerm)
	assert.False(t, s.OnInputChanged("x"))
}
