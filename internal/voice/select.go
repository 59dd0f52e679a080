package voice

import (
	"strconv"
	"strings"
)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	// common transcription slips
	"won": 1, "to": 2, "too": 2, "for": 4, "ate": 8,
}

// fillers are decoration the speaker wraps around the index, as in
// "number 2" or "the second one, please".
var fillers = map[string]bool{
	"number": true, "option": true, "choice": true, "pick": true,
	"select": true, "the": true, "piece": true, "please": true,
	"move": true, "take": true, "use": true,
}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
}

// ParseSelection extracts a 1-based candidate index from a spoken
// selection: a bare digit, a number word, an ordinal, or any of those
// decorated with filler words. ok is false when no index can be read;
// the caller re-prompts and the clarification stays pending.
func ParseSelection(input string) (int, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(input))
	cleaned = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ' {
			return r
		}
		return ' '
	}, cleaned)

	words := strings.Fields(cleaned)
	for _, word := range words {
		if fillers[word] {
			continue
		}
		if n, err := strconv.Atoi(word); err == nil && n > 0 {
			return n, true
		}
		if n, ok := numberWords[word]; ok {
			return n, true
		}
		if n, ok := ordinalWords[word]; ok {
			return n, true
		}
	}
	return 0, false
}
