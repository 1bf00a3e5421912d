package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTermFilter(t *testing.T) {
	f := NewTermFilter("Singapore")

	assert.False(t, f.ShouldInclude("Singapore"), "seeded term is a duplicate")
	assert.True(t, f.ShouldInclude("Sing Buri"))
	assert.False(t, f.ShouldInclude("Sing Buri"))
	assert.True(t, f.ShouldInclude("sing buri"), "terms compare exactly")
}

func TestTokenStarts(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"", []int{}},
		{"Paris", []int{0}},
		{"Kuala Lumpur", []int{0, 6}},
		{"  Ho Chi-Minh", []int{2, 5, 9}},
		{"St. John's (Antigua)", []int{0, 4, 9, 12}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenStarts([]rune(tt.in)))
		})
	}
}

func TestTokenEnd(t *testing.T) {
	runes := []rune("Kuala Lumpur")
	assert.Equal(t, 5, TokenEnd(runes, 0))
	assert.Equal(t, 12, TokenEnd(runes, 6))
}

func TestIsSearchable(t *testing.T) {
	assert.False(t, IsSearchable("", 2))
	assert.False(t, IsSearchable("S", 2))
	assert.True(t, IsSearchable("Si", 2))
	assert.False(t, IsSearchable("é", 2), "counts runes, not bytes")
}
