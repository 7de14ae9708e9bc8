package markov

// Location identifies one word of the corpus by its source, line and index
// therein, without copying any text. The backing line is shared with the
// owning Index.
type Location struct {
	Source int
	Line   int
	Index  int

	line []string
}

// Word returns the word at this location.
func (l Location) Word() string {
	return l.line[l.Index]
}

// NextWord returns the token following prefix, assuming prefix begins at
// this location: the next word of the line, or End when the prefix runs to
// the end of the line. ok is false when the prefix does not begin here.
func (l Location) NextWord(prefix []Token) (Token, bool) {
	end := l.Index + len(prefix)
	if end > len(l.line) {
		return Token{}, false
	}
	for i, tok := range prefix {
		if tok.IsEnd() || l.line[l.Index+i] != tok.Value() {
			return Token{}, false
		}
	}
	if end < len(l.line) {
		return Word(l.line[end]), true
	}
	return End, true
}

// Matches reports whether the consecutive tokens starting at this location
// equal words exactly, with End standing in for the position just past the
// end of the line.
func (l Location) Matches(words []Token) bool {
	for i, tok := range words {
		idx := l.Index + i
		switch {
		case idx < len(l.line):
			if tok.IsEnd() || l.line[idx] != tok.Value() {
				return false
			}
		case idx == len(l.line):
			if !tok.IsEnd() {
				return false
			}
		default:
			return false
		}
	}
	return true
}
