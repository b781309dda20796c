// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"slices"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// fzf's scoring tables (boundary and delimiter classes) are unset
// until Init runs; FuzzyMatchV2 matches nothing before that.
func init() {
	algo.Init("default")
}

// FuzzyResult is the outcome of matching one text against a pattern.
type FuzzyResult struct {
	Matched bool
	Score   int
	// Positions are the rune indices of matched characters, sorted
	// ascending.
	Positions []int
}

// NewFuzzySlab allocates the scratch memory fzf's matcher reuses
// across calls. One slab serves one goroutine.
func NewFuzzySlab() *util.Slab {
	return util.MakeSlab(16*1024, 2048)
}

// FuzzyPattern prepares a query for [FuzzyMatch]: lowercased and
// split into runes. Matching is case-insensitive.
func FuzzyPattern(query string) []rune {
	return []rune(strings.ToLower(strings.TrimSpace(query)))
}

// FuzzyMatch runs fzf's V2 algorithm (Smith-Waterman style, with
// bonuses for word boundaries and camel case) over text. An empty
// pattern matches everything with score zero.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{Matched: true}
	}
	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, pattern, true, slab)
	if result.Start < 0 {
		return FuzzyResult{}
	}
	fuzzy := FuzzyResult{Matched: true, Score: result.Score}
	if positions != nil {
		fuzzy.Positions = append([]int(nil), (*positions)...)
		slices.Sort(fuzzy.Positions)
	}
	return fuzzy
}

// HighlightMatches renders text with the runes at positions in
// highlight and the rest in base.
func HighlightMatches(text string, positions []int, base, highlight lipgloss.Style) string {
	if len(positions) == 0 {
		return base.Render(text)
	}
	marked := make(map[int]bool, len(positions))
	for _, position := range positions {
		marked[position] = true
	}

	var result strings.Builder
	var run []rune
	runHighlighted := false
	flush := func() {
		if len(run) == 0 {
			return
		}
		if runHighlighted {
			result.WriteString(highlight.Render(string(run)))
		} else {
			result.WriteString(base.Render(string(run)))
		}
		run = run[:0]
	}
	for index, character := range []rune(text) {
		if marked[index] != runHighlighted {
			flush()
			runHighlighted = marked[index]
		}
		run = append(run, character)
	}
	flush()
	return result.String()
}

// IsPrintable reports whether every rune in text is printable, which
// is what key handlers check before treating input as filter text.
func IsPrintable(text string) bool {
	for _, character := range text {
		if !unicode.IsPrint(character) {
			return false
		}
	}
	return text != ""
}
