package routing

import "strings"

// Canned replies for turns that resolve no code fragment. The table is
// immutable and matched in order; the last rule always matches.

type cannedRule struct {
	keywords []string
	reply    string
}

var cannedRules = []cannedRule{
	{
		keywords: []string{"hi", "hello", "hey", "good morning", "good evening"},
		reply:    "Hello! Paste a piece of code (or use a ``` fenced block) and I'll review it for issues before sending it off for a deeper analysis.",
	},
	{
		keywords: []string{"thanks", "thank you", "thx"},
		reply:    "You're welcome! Send over more code whenever you're ready.",
	},
	{
		keywords: []string{"help", "what can you do", "how do i"},
		reply:    "I review code: I check it locally for leaked credentials and common anti-patterns, then forward it for a full multi-agent analysis. Paste code directly or wrap it in a fenced block.",
	},
}

const defaultReply = "I didn't find any code in that message. Paste a snippet or wrap it in ``` fences and I'll take a look."

func cannedReply(message string) string {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, rule := range cannedRules {
		for _, kw := range rule.keywords {
			if matches(lower, kw) {
				return rule.reply
			}
		}
	}
	return defaultReply
}

// Single-word keywords match whole words only, so "this" never reads as "hi".
func matches(lower, keyword string) bool {
	if strings.ContainsRune(keyword, ' ') {
		return strings.Contains(lower, keyword)
	}
	for _, word := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if word == keyword {
			return true
		}
	}
	return false
}
