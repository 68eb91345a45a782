package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAnswer(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected string
	}{
		{"  Apple  ", "apple"},
		{"ÉCLAIR", "eclair"},
		{"São Paulo", "sao paulo"},
		{"tiger", "tiger"},
		{"", ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, normalizeAnswer(tc.input), "input %q", tc.input)
	}
}

func TestHeuristicValidator(t *testing.T) {
	t.Parallel()

	v := heuristicValidator{}

	testCases := []struct {
		desc     string
		answer   string
		letter   rune
		expected bool
	}{
		{"plausible word", "tiger", 'T', true},
		{"case folded input", "  TIGER ", 't', true},
		{"accented input folds", "pâris", 'P', true},
		{"wrong first letter", "tiger", 'B', false},
		{"empty", "", 'A', false},
		{"single character", "a", 'A', false},
		{"too short", "at", 'A', false},
		{"too long", "adisproportionately", 'A', false},
		{"contains space", "new york", 'N', false},
		{"no vowel", "brrgh", 'B', false},
		{"triple repeat", "baaanana", 'B', false},
		{"four consonant run", "angstrm", 'A', false},
		{"rare bigram", "ajxon", 'A', false},
		{"too many rare letters", "zigzagjig", 'Z', false},
		{"k counts as rare", "kwanzaa", 'K', false},
		{"two rare with k allowed", "kayak", 'K', true},
		{"repeated unit", "hahahaha", 'H', false},
		{"two rare letters allowed", "window", 'W', true},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, v.Validate(tc.answer, tc.letter, CategoryThing))
		})
	}
}

func TestLexiconValidator(t *testing.T) {
	t.Parallel()

	v := newLexiconValidator()

	testCases := []struct {
		desc     string
		answer   string
		letter   rune
		category Category
		expected bool
	}{
		{"known name", "Asha", 'A', CategoryName, true},
		{"known place", "Paris", 'P', CategoryPlace, true},
		{"place with space", "new york", 'N', CategoryPlace, true},
		{"known animal", "Tiger", 'T', CategoryAnimal, true},
		{"known movie", "Inception", 'I', CategoryMovie, true},
		{"thing from word list", "umbrella", 'U', CategoryThing, true},
		{"thing from noun supplement", "telescope", 'T', CategoryThing, true},
		{"wrong letter", "tiger", 'B', CategoryAnimal, false},
		{"not in lexicon", "blorptex", 'B', CategoryAnimal, false},
		{"wrong category", "tiger", 'T', CategoryPlace, false},
		{"digits rejected", "tiger2", 'T', CategoryAnimal, false},
		{"empty", "", 'A', CategoryName, false},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, v.Validate(tc.answer, tc.letter, tc.category))
		})
	}
}

func TestCheckSubmission(t *testing.T) {
	t.Parallel()

	v := heuristicValidator{}

	valid := Answers{
		Name:   "tanya",
		Place:  "texas",
		Animal: "tiger",
		Thing:  "table",
		Movie:  "titanic",
	}

	ok, reason := checkSubmission(v, 'T', valid, false)
	assert.True(t, ok)
	assert.Empty(t, reason)

	ok, reason = checkSubmission(v, 'T', valid, true)
	assert.True(t, ok)
	assert.Empty(t, reason)

	oneBad := valid
	oneBad.Movie = "frozen"
	ok, reason = checkSubmission(v, 'T', oneBad, false)
	assert.False(t, ok)
	assert.Contains(t, reason, "movie")

	duplicated := valid
	duplicated.Thing = "Tiger"
	ok, _ = checkSubmission(v, 'T', duplicated, false)
	assert.True(t, ok, "duplicates allowed when uniqueness is off")

	ok, reason = checkSubmission(v, 'T', duplicated, true)
	assert.False(t, ok)
	assert.Contains(t, reason, "different")
}
