package markov

import "strings"

// Token is a single word from a corpus line, or the End sentinel marking
// the end of a line. Tokens are comparable and usable as map keys; End
// never compares equal to any word token.
type Token struct {
	word string
	end  bool
}

// End marks the end of a line. It is distinct from every word, including
// the empty one.
var End = Token{end: true}

// Word wraps a plain word as a Token.
func Word(w string) Token {
	return Token{word: w}
}

// Words converts a slice of plain words into word tokens.
func Words(words []string) []Token {
	tokens := make([]Token, len(words))
	for i, w := range words {
		tokens[i] = Word(w)
	}
	return tokens
}

// IsEnd reports whether the token is the End sentinel.
func (t Token) IsEnd() bool {
	return t.end
}

// Value returns the underlying word. End has no word value.
func (t Token) Value() string {
	return t.word
}

func (t Token) String() string {
	if t.end {
		return "<end>"
	}
	return t.word
}

// less orders words lexically and sorts End after every word. Only used to
// give map iterations a stable order.
func (t Token) less(other Token) bool {
	if t.end != other.end {
		return !t.end
	}
	return t.word < other.word
}

// Suffix returns the last n tokens, or all of them when there are fewer.
func Suffix(n int, tokens []Token) []Token {
	if len(tokens) <= n {
		return tokens
	}
	return tokens[len(tokens)-n:]
}

// Text joins word tokens with single spaces, dropping the End sentinel.
func Text(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !t.IsEnd() {
			parts = append(parts, t.Value())
		}
	}
	return strings.Join(parts, " ")
}
