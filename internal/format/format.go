// Package format reshapes reply text for an elderly audience: one sentence
// per paragraph, no length-based wrapping.
package format

import "strings"

// Sentence-terminal marks. Splitting happens immediately after one of these;
// the mark stays with its sentence. 読点 (、) never breaks a sentence.
var terminals = []rune{'。', '？', '！'}

// ForSenior splits text into sentences and joins them with a single blank
// line. Text without any terminal mark comes back as one sentence. Pure.
func ForSenior(text string) string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if isTerminal(r) {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}

	kept := sentences[:0]
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s != "" {
			kept = append(kept, s)
		}
	}

	return strings.Join(kept, "\n\n")
}

func isTerminal(r rune) bool {
	for _, t := range terminals {
		if r == t {
			return true
		}
	}
	return false
}
