// Package language implements a lightweight stop-word heuristic for
// detecting the locale of review text. It supports en, de, fr and es and
// always returns a value.
package language

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// BaseLocale is returned on ties and when no fingerprint matches. English
// is favoured because it is the most probable input language.
const BaseLocale = "en"

// wordSets holds the folded fingerprint sets, built once at init.
var wordSets = buildWordSets()

func buildWordSets() map[string]map[string]struct{} {
	sets := make(map[string]map[string]struct{}, len(localeWords))
	for locale, words := range localeWords {
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			set[foldAccents(strings.ToLower(w))] = struct{}{}
		}
		sets[locale] = set
	}
	return sets
}

// foldAccents strips diacritical marks from a string.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// Detect returns the locale whose common-word fingerprint matches the most
// whole words in text. Ties and zero matches fall back to BaseLocale.
func Detect(text string) string {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return BaseLocale
	}

	counts := make(map[string]int, len(wordSets))
	for _, tok := range tokens {
		for locale, set := range wordSets {
			if _, ok := set[tok]; ok {
				counts[locale]++
			}
		}
	}

	// Strictly largest count wins; a shared maximum is a tie and falls
	// back to the base locale.
	best := BaseLocale
	bestCount := counts[BaseLocale]
	tied := false
	for _, locale := range supportedLocales {
		if locale == BaseLocale {
			continue
		}
		switch {
		case counts[locale] > bestCount:
			best = locale
			bestCount = counts[locale]
			tied = false
		case counts[locale] == bestCount:
			tied = true
		}
	}
	if bestCount == 0 || tied {
		return BaseLocale
	}
	return best
}

// tokenize lowercases, folds accents and splits on non-letter runes.
func tokenize(text string) []string {
	folded := foldAccents(strings.ToLower(text))
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
