package expr

type tokenType int

const (
	// Special tokens
	tokIllegal tokenType = iota
	tokEOF

	// Literals
	tokIdent
	tokInt
	tokFloat
	tokString

	// Keywords
	tokAnd
	tokOr
	tokNot
	tokIn
	tokTrue
	tokFalse
	tokNone

	// Operators
	tokAssign      // =
	tokPlusAssign  // +=
	tokMinusAssign // -=
	tokEq          // ==
	tokNotEq       // !=
	tokLt          // <
	tokGt          // >
	tokLte         // <=
	tokGte         // >=
	tokPlus        // +
	tokMinus       // -
	tokStar        // *
	tokSlash       // /
	tokPercent     // %

	// Delimiters
	tokComma  // ,
	tokLparen // (
	tokRparen // )
)

type token struct {
	Type    tokenType
	Literal string
	Pos     int // byte offset into the source
}

var keywords = map[string]tokenType{
	"and":   tokAnd,
	"or":    tokOr,
	"not":   tokNot,
	"in":    tokIn,
	"True":  tokTrue,
	"False": tokFalse,
	"None":  tokNone,
}

type lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *lexer) nextToken() token {
	l.skipWhitespace()

	pos := l.position

	var tok token
	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token{Type: tokEq, Literal: "==", Pos: pos}
		} else {
			tok = token{Type: tokAssign, Literal: "=", Pos: pos}
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token{Type: tokNotEq, Literal: "!=", Pos: pos}
		} else {
			tok = token{Type: tokIllegal, Literal: string(l.ch), Pos: pos}
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token{Type: tokLte, Literal: "<=", Pos: pos}
		} else {
			tok = token{Type: tokLt, Literal: "<", Pos: pos}
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token{Type: tokGte, Literal: ">=", Pos: pos}
		} else {
			tok = token{Type: tokGt, Literal: ">", Pos: pos}
		}
	case '+':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token{Type: tokPlusAssign, Literal: "+=", Pos: pos}
		} else {
			tok = token{Type: tokPlus, Literal: "+", Pos: pos}
		}
	case '-':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token{Type: tokMinusAssign, Literal: "-=", Pos: pos}
		} else {
			tok = token{Type: tokMinus, Literal: "-", Pos: pos}
		}
	case '*':
		tok = token{Type: tokStar, Literal: "*", Pos: pos}
	case '/':
		tok = token{Type: tokSlash, Literal: "/", Pos: pos}
	case '%':
		tok = token{Type: tokPercent, Literal: "%", Pos: pos}
	case ',':
		tok = token{Type: tokComma, Literal: ",", Pos: pos}
	case '(':
		tok = token{Type: tokLparen, Literal: "(", Pos: pos}
	case ')':
		tok = token{Type: tokRparen, Literal: ")", Pos: pos}
	case '\'', '"':
		lit, ok := l.readString(l.ch)
		if !ok {
			return token{Type: tokIllegal, Literal: lit, Pos: pos}
		}
		return token{Type: tokString, Literal: lit, Pos: pos}
	case 0:
		tok = token{Type: tokEOF, Literal: "", Pos: pos}
	default:
		if isLetter(l.ch) {
			lit := l.readIdentifier()
			return token{Type: lookupIdent(lit), Literal: lit, Pos: pos}
		}
		if isDigit(l.ch) {
			typ, lit := l.readNumber()
			return token{Type: typ, Literal: lit, Pos: pos}
		}
		tok = token{Type: tokIllegal, Literal: string(l.ch), Pos: pos}
	}

	l.readChar()
	return tok
}

func (l *lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *lexer) readNumber() (tokenType, string) {
	position := l.position
	typ := tokInt

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		typ = tokFloat
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return typ, l.input[position:l.position]
}

// readString reads a quoted string literal, resolving backslash escapes.
// The bool result is false when the closing quote is missing.
func (l *lexer) readString(quote byte) (string, bool) {
	var out []byte
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return string(out), false
		case quote:
			l.readChar()
			return string(out), true
		case '\\':
			next := l.peekChar()
			switch next {
			case '\\', '\'', '"':
				out = append(out, next)
				l.readChar()
			default:
				out = append(out, l.ch)
			}
		default:
			out = append(out, l.ch)
		}
	}
}

func (l *lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func lookupIdent(ident string) tokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return tokIdent
}
