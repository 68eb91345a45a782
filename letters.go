package main

import (
	"crypto/rand"
	"math/big"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// drawLetter picks a letter not present in used, uniformly at random.
// Once every letter has been drawn, repeats are allowed.
func drawLetter(used map[rune]bool) rune {
	remaining := make([]rune, 0, len(alphabet))
	for _, letter := range alphabet {
		if !used[letter] {
			remaining = append(remaining, letter)
		}
	}

	if len(remaining) == 0 {
		remaining = []rune(alphabet)
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(remaining))))
	if err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	return remaining[n.Int64()]
}
