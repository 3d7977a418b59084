// lexer.go: the tokenizer.
//
// Four token kinds: open paren, close paren, a maximal run of whitespace
// (kept as a token so its extent is known, though the parser skips it),
// and a maximal run of anything else as a symbol. The delimiter set is
// exactly '(', ')', space, tab, CR and LF. There is no escaping, no
// quoting, no string or numeric syntax; every atom is a bare symbol, and
// the parser decides which spellings are literals.
package softmacs

// TokenType represents the kind of token.
type TokenType int

const (
	LPAREN TokenType = iota
	RPAREN
	SPACE  // maximal whitespace run
	SYMBOL // maximal non-delimiter run
)

// Token is one lexical token. Line and Col are 1-based and point at the
// token's first character.
type Token struct {
	Type TokenType
	Text string
	Line int
	Col  int
}

func isSpaceRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func isDelimiter(r rune) bool {
	return r == '(' || r == ')' || isSpaceRune(r)
}

// tokenize scans src into a flat token sequence. It cannot fail: any
// character is either a paren, whitespace, or part of a symbol.
func tokenize(src string) []Token {
	runes := []rune(src)
	tokens := []Token{}
	line, col := 1, 1
	i := 0

	// advance consumes one rune, maintaining line/col.
	advance := func() rune {
		r := runes[i]
		i++
		if r == '\n' {
			line, col = line+1, 1
		} else {
			col++
		}
		return r
	}

	for i < len(runes) {
		startLine, startCol := line, col
		switch r := runes[i]; {
		case r == '(':
			advance()
			tokens = append(tokens, Token{Type: LPAREN, Text: "(", Line: startLine, Col: startCol})
		case r == ')':
			advance()
			tokens = append(tokens, Token{Type: RPAREN, Text: ")", Line: startLine, Col: startCol})
		case isSpaceRune(r):
			start := i
			for i < len(runes) && isSpaceRune(runes[i]) {
				advance()
			}
			tokens = append(tokens, Token{Type: SPACE, Text: string(runes[start:i]), Line: startLine, Col: startCol})
		default:
			start := i
			for i < len(runes) && !isDelimiter(runes[i]) {
				advance()
			}
			tokens = append(tokens, Token{Type: SYMBOL, Text: string(runes[start:i]), Line: startLine, Col: startCol})
		}
	}
	return tokens
}
