// Package chroma provides language detection and syntax tokenization using
// the chroma library.
package chroma

import (
	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/anydiff"
)

// Compile-time interface verification.
var _ anydiff.Tokenizer = (*Tokenizer)(nil)

// Tokenizer splits lines into the syntax tokens of one language, so that
// marks follow token boundaries such as whole attribute values.
type Tokenizer struct {
	lexer chromalib.Lexer
}

// NewTokenizer creates a tokenizer for language. Unknown languages fall back
// to chroma's plain-text lexer.
func NewTokenizer(language string) *Tokenizer {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	// Coalesce for better performance with consecutive tokens of the same type
	return &Tokenizer{lexer: chromalib.Coalesce(lexer)}
}

// Tokenize splits s into syntax tokens. The tokens always concatenate to s;
// if the lexer fails, s is returned as a single token.
func (t *Tokenizer) Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	iterator, err := t.lexer.Tokenise(nil, s)
	if err != nil {
		return []string{s}
	}

	var tokens []string
	rest := s
	for token := iterator(); token != chromalib.EOF && rest != ""; token = iterator() {
		v := token.Value
		if len(v) > len(rest) {
			v = rest
		}
		if v == "" || rest[:len(v)] != v {
			// The lexer rewrote the input (for example by normalizing
			// line endings); keep whatever is left as one token.
			break
		}
		tokens = append(tokens, v)
		rest = rest[len(v):]
	}
	if rest != "" {
		tokens = append(tokens, rest)
	}
	return tokens
}
