// Package tokenize turns a plaintext string into the set of terms an
// indexer hashes, and the token filters that normalize those terms
// before hashing.
package tokenize

import (
	"strings"
	"unicode"
)

// Tokenizer splits a string into tokens for an edge-n-gram or full-text
// style index.
type Tokenizer interface {
	Tokenize(s string) []string
}

// EdgeNgram emits, for every alphabetic word in s, every prefix of that
// word whose length falls in [Min, Max]. Non-alphabetic runs end the
// current word and are never themselves part of a gram.
type EdgeNgram struct {
	Min, Max int
}

func (t EdgeNgram) Tokenize(s string) []string {
	return edgeNgrams(s, t.Min, t.Max, true)
}

// EdgeNgramRaw is the same sliding-prefix scheme as EdgeNgram but does
// not treat non-alphabetic characters specially: every character
// advances the current run. This is what a prefix indexer uses to
// expand a full field value into its set of matchable prefixes, since
// field values are not prose.
type EdgeNgramRaw struct {
	Min, Max int
}

func (t EdgeNgramRaw) Tokenize(s string) []string {
	return edgeNgrams(s, t.Min, t.Max, false)
}

func edgeNgrams(s string, min, max int, alphaOnly bool) []string {
	if min > max {
		return nil
	}
	var out []string
	runes := []rune(s)
	wordStart := 0
	flush := func(end int) {
		word := runes[wordStart:end]
		for n := min; n <= max && n <= len(word); n++ {
			if n <= 0 {
				continue
			}
			out = append(out, string(word[:n]))
		}
	}
	if !alphaOnly {
		flush(len(runes))
		return out
	}
	for i, r := range runes {
		if !unicode.IsLetter(r) {
			flush(i)
			wordStart = i + 1
		}
	}
	flush(len(runes))
	return out
}

// Ngram emits every contiguous substring of s with the given fixed
// length. A length of 0 or a string shorter than length yields nothing.
type Ngram struct {
	Length int
}

func (t Ngram) Tokenize(s string) []string {
	runes := []rune(s)
	if t.Length <= 0 || len(runes) < t.Length {
		return nil
	}
	out := make([]string, 0, len(runes)-t.Length+1)
	for i := 0; i+t.Length <= len(runes); i++ {
		out = append(out, string(runes[i:i+t.Length]))
	}
	return out
}

// Standard splits on whitespace and the punctuation marks a CSV-ish
// or sentence-ish field commonly uses as a separator.
type Standard struct{}

func (Standard) Tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', ',', ';', ':', '!':
			return true
		}
		return unicode.IsSpace(r)
	})
}

// Filter normalizes a token before it is hashed.
type Filter interface {
	Apply(s string) string
}

// Upcase uppercases a token.
type Upcase struct{}

func (Upcase) Apply(s string) string { return strings.ToUpper(s) }

// Downcase lowercases a token.
type Downcase struct{}

func (Downcase) Apply(s string) string { return strings.ToLower(s) }

// ApplyAll runs filters in order over tokens, returning a new slice.
func ApplyAll(filters []Filter, tokens []string) []string {
	if len(filters) == 0 {
		return tokens
	}
	out := make([]string, len(tokens))
	copy(out, tokens)
	for _, f := range filters {
		for i, tok := range out {
			out[i] = f.Apply(tok)
		}
	}
	return out
}

// StripLikeWildcards strips a single leading '%' or '_' and a single
// trailing '%' or '_' from s, tolerating a query written in LIKE
// syntax (e.g. "%foo%") against an index that only ever stores raw
// terms.
func StripLikeWildcards(s string) string {
	if strings.HasPrefix(s, "%") || strings.HasPrefix(s, "_") {
		s = s[1:]
	}
	if strings.HasSuffix(s, "%") || strings.HasSuffix(s, "_") {
		s = s[:len(s)-1]
	}
	return s
}
