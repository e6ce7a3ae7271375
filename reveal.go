package main

import (
	"math/rand/v2"
	"strings"
	"time"
)

// RevealMode selects how a reply is uncovered in the UI.
type RevealMode string

const (
	RevealWord RevealMode = "word"
	RevealChar RevealMode = "char"
	RevealOff  RevealMode = "off"
)

func parseRevealMode(s string) RevealMode {
	switch RevealMode(strings.ToLower(strings.TrimSpace(s))) {
	case RevealChar:
		return RevealChar
	case RevealOff:
		return RevealOff
	default:
		return RevealWord
	}
}

// RevealSequence yields growing prefixes of a reply. Prefixes are computed on
// demand; the last one is always the full text.
type RevealSequence struct {
	text  string
	mode  RevealMode
	cuts  []int // byte offsets where each prefix ends
	index int
}

// NewRevealSequence builds the sequence for text.
func NewRevealSequence(text string, mode RevealMode) *RevealSequence {
	s := &RevealSequence{text: text, mode: mode}
	switch mode {
	case RevealChar:
		for i := range text {
			if i > 0 {
				s.cuts = append(s.cuts, i)
			}
		}
	case RevealWord:
		// Words are separated by single spaces; a run of spaces yields empty
		// words, matching a plain split.
		for i := 0; i < len(text); i++ {
			if text[i] == ' ' {
				s.cuts = append(s.cuts, i)
			}
		}
	}
	s.cuts = append(s.cuts, len(text))
	return s
}

// Next returns the next prefix and false once the sequence is exhausted.
func (s *RevealSequence) Next() (string, bool) {
	if s.index >= len(s.cuts) {
		return "", false
	}
	prefix := s.text[:s.cuts[s.index]]
	s.index++
	return prefix, true
}

// Done reports whether every prefix has been produced.
func (s *RevealSequence) Done() bool {
	return s.index >= len(s.cuts)
}

// Reset restarts the sequence from the first prefix.
func (s *RevealSequence) Reset() {
	s.index = 0
}

// Len is the number of prefixes the sequence produces.
func (s *RevealSequence) Len() int {
	return len(s.cuts)
}

// Text returns the full reply.
func (s *RevealSequence) Text() string {
	return s.text
}

// revealDelay picks a random pause in [min, max).
func revealDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + rand.N(max-min)
}
