package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// TestModerator_Censor
// The dictionary uses specific words to avoid partial collisions (e.g., "he" inside "The")
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake", "mushroom"}
	mod, err := NewModerator(dictionary, replacementChar)
	req.NoError(err)

	tests := []struct {
		name      string
		input     string
		expected  string
		wantFound int
	}{
		{"Clean text untouched", "a perfectly polite sentence", "a perfectly polite sentence", 0},
		{"Plain match", "what a badger you are", "what a ****** you are", 1},
		{"Case insensitive", "SNAKE in the grass", "***** in the grass", 1},
		{"Leet speak", "sn4k3 alert", "***** alert", 1},
		{"Punctuation noise", "s.n.a.k.e", "*********", 1},
		{"Multiple matches", "badger and snake", "****** and *****", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			censored, found := mod.Censor(tt.input)
			req.Equal(tt.expected, censored)
			req.Len(found, tt.wantFound)
		})
	}
}

func TestModerator_Censor_PreservesLength(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"badger"}, replacementChar)
	req.NoError(err)

	input := "the badger digs"
	censored, _ := mod.Censor(input)
	req.Equal(len([]rune(input)), len([]rune(censored)))
}
