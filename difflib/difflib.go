// Package difflib tokenizes lines with a user supplied regular expression.
package difflib

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/fwojciec/anydiff"
)

// Compile-time interface verification.
var _ anydiff.Tokenizer = (*Tokenizer)(nil)

// DefaultPattern matches identifiers, numbers, quoted strings, operators,
// punctuation and white space runs.
const DefaultPattern = `[a-zA-Z_][a-zA-Z0-9_]*|` + // identifiers
	`[0-9]+\.?[0-9]*|` + // numbers
	`"[^"]*"|'[^']*'|` + // string literals
	`[+\-*/=<>!&|^%:]+|` + // operators (including :)
	`[(){}\[\];,.]|` + // punctuation
	`\s+` // whitespace

// Tokenizer splits strings into the matches of a pattern. Text between
// matches becomes tokens of one rune each so that the tokens always
// concatenate to the input.
type Tokenizer struct {
	tokenPattern *regexp.Regexp
}

// NewTokenizer compiles pattern. An empty pattern selects DefaultPattern.
func NewTokenizer(pattern string) (*Tokenizer, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: token-pattern: %v", anydiff.ErrInvalidOption, err)
	}
	return &Tokenizer{tokenPattern: re}, nil
}

// Tokenize splits a string into tokens.
func (t *Tokenizer) Tokenize(s string) []string {
	var tokens []string
	pos := 0
	for _, loc := range t.tokenPattern.FindAllStringIndex(s, -1) {
		if loc[0] == loc[1] {
			continue
		}
		tokens = appendRunes(tokens, s[pos:loc[0]])
		tokens = append(tokens, s[loc[0]:loc[1]])
		pos = loc[1]
	}
	return appendRunes(tokens, s[pos:])
}

func appendRunes(tokens []string, s string) []string {
	for s != "" {
		_, size := utf8.DecodeRuneInString(s)
		tokens = append(tokens, s[:size])
		s = s[size:]
	}
	return tokens
}
