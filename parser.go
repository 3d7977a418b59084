// parser.go: the stack-machine parser.
//
// The parser folds a token sequence into heap-resident values. An explicit
// stack of pending lists replaces recursion: open paren pushes a fresh
// pending list, close paren pops it, folds the collected children
// right-to-left into pairs terminated by unit, and appends the result to
// the enclosing pending list. Top-level values come back in source order;
// multiple top-level forms are never wrapped into one list.
//
// Literal spellings: a symbol token starting with '#' resolves against a
// fixed table ("#" is unit, "#t" and "#f" the booleans), and any other
// '#'-spelling is a read error. Every other symbol token allocates an
// ordinary symbol.
package softmacs

import "fmt"

// pending is one open list under construction, remembering where it began
// for the unclosed-list diagnostic.
type pending struct {
	values []Gc
	line   int
	col    int
}

// parse runs the token stream against the interpreter's constructors.
// Every allocation goes through ip, so space and pointer errors surface
// here unchanged.
func parse(tokens []Token, ip *Interp) ([]Gc, error) {
	values := []Gc{}
	stack := []pending{}

	for _, tok := range tokens {
		switch tok.Type {
		case LPAREN:
			stack = append(stack, pending{values: values, line: tok.Line, col: tok.Col})
			values = []Gc{}

		case RPAREN:
			if len(stack) == 0 {
				return nil, &ReadError{Line: tok.Line, Col: tok.Col, Msg: "unmatched close paren"}
			}
			xs, err := ip.Unit()
			if err != nil {
				return nil, err
			}
			for i := len(values) - 1; i >= 0; i-- {
				xs, err = ip.Pair(values[i], xs)
				if err != nil {
					return nil, err
				}
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			values = append(top.values, xs)

		case SPACE:
			// insignificant

		case SYMBOL:
			ptr, err := readAtom(tok, ip)
			if err != nil {
				return nil, err
			}
			values = append(values, ptr)
		}
	}

	if len(stack) > 0 {
		open := stack[len(stack)-1]
		return nil, &ReadError{
			Line:       open.line,
			Col:        open.col,
			Msg:        "unclosed list",
			Incomplete: true,
		}
	}
	return values, nil
}

// readAtom allocates the value for one symbol token, resolving the
// '#'-literal table first.
func readAtom(tok Token, ip *Interp) (Gc, error) {
	if tok.Text[0] == '#' {
		switch tok.Text {
		case "#":
			return ip.Unit()
		case "#t":
			return ip.T()
		case "#f":
			return ip.F()
		default:
			return Gc{}, &ReadError{
				Line: tok.Line,
				Col:  tok.Col,
				Msg:  fmt.Sprintf("unknown literal %q", tok.Text),
			}
		}
	}
	return ip.Symbol(tok.Text)
}
