package main

import (
	"embed"
	"strings"
)

//go:embed words/*.txt
var lexicons embed.FS

// loadWordSet reads one embedded reference list, one entry per line.
func loadWordSet(name string) map[string]bool {
	data, err := lexicons.ReadFile("words/" + name + ".txt")
	if err != nil {
		panic("missing embedded word list: " + name)
	}

	set := make(map[string]bool)
	for line := range strings.Lines(string(data)) {
		word := strings.ToLower(strings.TrimSpace(line))
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		set[word] = true
	}

	return set
}
