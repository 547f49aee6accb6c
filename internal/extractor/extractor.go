package extractor

import (
	"regexp"
	"strings"
)

// Extractor resolves a code fragment from a free-form message, first from a
// fenced block, then by heuristic detection.

// A language tag only counts when it is followed by a newline, so a one-line
// fence like ```fun test() {}``` keeps its first word.
var fencedBlock = regexp.MustCompile("(?s)```(?:[A-Za-z0-9+#_-]+\n)?(.*?)```")

// minHeuristicLen is the minimum message length for heuristic detection.
const minHeuristicLen = 20

// minIndicators is the minimum number of distinct code-like tokens the
// heuristic requires.
const minIndicators = 3

var codeIndicators = []string{
	"fun ", "val ", "var ", "def ", "func ", "function", "class ",
	"import ", "return", "=>", "->", "{", "}", "(", ")", "=", ";",
	"//", "/*", "#", ":", "</",
}

// Extract returns the code fragment found in message, or ok=false when the
// message holds no code.
//
// Policy: when the message holds several fenced blocks only the first one is
// used. An opening fence with no closing fence is treated as no match.
func Extract(message string) (string, bool) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "", false
	}

	if m := fencedBlock.FindStringSubmatch(message); m != nil {
		inner := strings.TrimSpace(m[1])
		if inner != "" {
			return inner, true
		}
		return "", false
	}

	if looksLikeCode(trimmed) {
		return trimmed, true
	}
	return "", false
}

func looksLikeCode(s string) bool {
	if len(s) <= minHeuristicLen {
		return false
	}
	if !strings.Contains(s, "{") && !strings.Contains(s, "</") {
		return false
	}
	count := 0
	for _, tok := range codeIndicators {
		if strings.Contains(s, tok) {
			count++
		}
	}
	return count >= minIndicators
}
