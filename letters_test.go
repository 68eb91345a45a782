package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrawLetterAvoidsUsed(t *testing.T) {
	t.Parallel()

	used := make(map[rune]bool)

	for i := 0; i < len(alphabet); i++ {
		letter := drawLetter(used)

		assert.False(t, used[letter], "drew %c twice before exhaustion", letter)
		assert.True(t, strings.ContainsRune(alphabet, letter))

		used[letter] = true
	}

	assert.Len(t, used, len(alphabet))
}

func TestDrawLetterAfterExhaustion(t *testing.T) {
	t.Parallel()

	used := make(map[rune]bool)
	for _, letter := range alphabet {
		used[letter] = true
	}

	for i := 0; i < 50; i++ {
		letter := drawLetter(used)
		assert.True(t, strings.ContainsRune(alphabet, letter))
	}
}

func TestDrawLetterOnlyRemaining(t *testing.T) {
	t.Parallel()

	used := make(map[rune]bool)
	for _, letter := range alphabet {
		if letter != 'Q' {
			used[letter] = true
		}
	}

	assert.Equal(t, 'Q', drawLetter(used))
}
