package main

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Category string

const (
	CategoryName   Category = "name"
	CategoryPlace  Category = "place"
	CategoryAnimal Category = "animal"
	CategoryThing  Category = "thing"
	CategoryMovie  Category = "movie"
)

var categories = []Category{CategoryName, CategoryPlace, CategoryAnimal, CategoryThing, CategoryMovie}

// Validator decides whether a submitted string is an acceptable
// answer for the given letter and category.
type Validator interface {
	Validate(raw string, letter rune, category Category) bool
}

func newValidator(cfg *Config) Validator {
	if cfg.validator == "lexicon" {
		return newLexiconValidator()
	}
	return heuristicValidator{}
}

// normalizeAnswer lowercases, trims, and strips combining marks, so
// accented input folds into the plain a-z domain the validators expect.
func normalizeAnswer(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimSpace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// startsWith applies the checks shared by both strategies: the token
// must be at least two characters and begin with the required letter.
func startsWith(token string, letter rune) bool {
	if len(token) < 2 {
		return false
	}
	return rune(token[0]) == unicode.ToLower(letter)
}

const vowels = "aeiou"

// rareBigrams lists letter pairs essentially absent from English words.
var rareBigrams = []string{
	"bq", "cj", "fq", "gx", "jq", "jx", "jz", "kq", "kx",
	"mx", "pq", "px", "qj", "qz", "vq", "vx", "wq", "wx",
	"xj", "zx",
}

func hasVowel(token string) bool {
	return strings.ContainsAny(token, vowels)
}

func hasTripleRun(token string) bool {
	run := 1
	for i := 1; i < len(token); i++ {
		if token[i] == token[i-1] {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

func hasLongConsonantRun(token string) bool {
	run := 0
	for _, r := range token {
		if r == ' ' || strings.ContainsRune(vowels, r) || r == 'y' {
			run = 0
			continue
		}
		run++
		if run >= 4 {
			return true
		}
	}
	return false
}

func hasRareBigram(token string) bool {
	for _, bigram := range rareBigrams {
		if strings.Contains(token, bigram) {
			return true
		}
	}
	return false
}

// isRepeatedUnit reports whether token is a short unit of 2-3 characters
// repeated three or more times, like "hahahaha" or "lollollol".
func isRepeatedUnit(token string) bool {
	for size := 2; size <= 3; size++ {
		if len(token) < size*3 || len(token)%size != 0 {
			continue
		}
		unit := token[:size]
		repeated := true
		for i := size; i < len(token); i += size {
			if token[i:i+size] != unit {
				repeated = false
				break
			}
		}
		if repeated {
			return true
		}
	}
	return false
}

// heuristicValidator accepts plausible single words without any
// reference data, using shape rules alone.
type heuristicValidator struct{}

var singleWord = regexp.MustCompile(`^[a-z]+$`)

const rareLetters = "jqxzvwk"

func (heuristicValidator) Validate(raw string, letter rune, category Category) bool {
	token := normalizeAnswer(raw)

	switch {
	case !startsWith(token, letter):
		return false
	case !singleWord.MatchString(token):
		return false
	case len(token) < 3 || len(token) > 12:
		return false
	case !hasVowel(token):
		return false
	case hasTripleRun(token):
		return false
	case hasLongConsonantRun(token):
		return false
	case hasRareBigram(token):
		return false
	case isRepeatedUnit(token):
		return false
	}

	rare := 0
	for _, r := range token {
		if strings.ContainsRune(rareLetters, r) {
			rare++
		}
	}

	return rare <= 2
}

// lexiconValidator checks membership in per-category reference sets,
// then applies a looser shape check to weed out garbage entries.
type lexiconValidator struct {
	sets  map[Category]map[string]bool
	words map[string]bool
	nouns map[string]bool
}

var lexiconToken = regexp.MustCompile(`^[a-z ]+$`)

func newLexiconValidator() *lexiconValidator {
	return &lexiconValidator{
		sets: map[Category]map[string]bool{
			CategoryName:   loadWordSet("names"),
			CategoryPlace:  loadWordSet("places"),
			CategoryAnimal: loadWordSet("animals"),
			CategoryMovie:  loadWordSet("movies"),
		},
		words: loadWordSet("words"),
		nouns: loadWordSet("nouns"),
	}
}

func (v *lexiconValidator) Validate(raw string, letter rune, category Category) bool {
	token := normalizeAnswer(raw)

	if !startsWith(token, letter) || !lexiconToken.MatchString(token) {
		return false
	}

	if category == CategoryThing {
		if !v.words[token] && !v.nouns[token] {
			return false
		}
	} else if !v.sets[category][token] {
		return false
	}

	return v.looksLikeWord(token)
}

func (v *lexiconValidator) looksLikeWord(token string) bool {
	switch {
	case !hasVowel(token) && !v.sets[CategoryName][token]:
		return false
	case hasLongConsonantRun(token):
		return false
	case hasRareBigram(token):
		return false
	case hasTripleRun(token):
		return false
	}
	return true
}

// Answers holds one submission, a single answer per category.
type Answers struct {
	Name   string `json:"name"`
	Place  string `json:"place"`
	Animal string `json:"animal"`
	Thing  string `json:"thing"`
	Movie  string `json:"movie"`
}

func (a Answers) get(category Category) string {
	switch category {
	case CategoryName:
		return a.Name
	case CategoryPlace:
		return a.Place
	case CategoryAnimal:
		return a.Animal
	case CategoryThing:
		return a.Thing
	case CategoryMovie:
		return a.Movie
	}
	return ""
}

// checkSubmission validates all five answers, optionally requiring them
// to be pairwise distinct. A failure returns a message for the submitter.
func checkSubmission(v Validator, letter rune, answers Answers, unique bool) (bool, string) {
	for _, category := range categories {
		if !v.Validate(answers.get(category), letter, category) {
			return false, "That doesn't look like a valid " + string(category) + "."
		}
	}

	if unique {
		seen := make(map[string]bool, len(categories))
		for _, category := range categories {
			token := normalizeAnswer(answers.get(category))
			if seen[token] {
				return false, "Each answer must be different."
			}
			seen[token] = true
		}
	}

	return true, ""
}
