package lexer

// Lexer scans IDL source text and produces tokens
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int
}

// New creates a new Lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// atEOF reports whether the input is exhausted. A NUL byte inside the
// input is not the end.
func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		l.readChar()
	}
}

// skipLineComment skips a // comment up to, not including, the newline
func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && !l.atEOF() {
		l.readChar()
	}
}

// skipBlockComment skips the body of a /* */ comment. The opening
// delimiter has already been consumed. Reports false when the input ends
// before the comment is closed.
func (l *Lexer) skipBlockComment() bool {
	for {
		if l.atEOF() {
			return false
		}
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return true
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a decimal or 0x-prefixed hexadecimal integer
func (l *Lexer) readNumber() string {
	position := l.position
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) {
			l.readChar()
		}
		return l.input[position:l.position]
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	line, column := l.line, l.column
	tok := func(t TokenType, lit string) Token {
		return Token{Type: t, Literal: lit, Line: line, Column: column}
	}

	var t Token
	switch l.ch {
	case '/':
		switch l.peekChar() {
		case '/':
			l.skipLineComment()
			return l.NextToken()
		case '*':
			l.readChar()
			l.readChar()
			if !l.skipBlockComment() {
				return tok(ILLEGAL, "unterminated comment")
			}
			return l.NextToken()
		}
		t = tok(ILLEGAL, "/")
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			t = tok(ARROW, "->")
		} else {
			t = tok(MINUS, "-")
		}
	case '{':
		t = tok(LBRACE, "{")
	case '}':
		t = tok(RBRACE, "}")
	case '(':
		t = tok(LPAREN, "(")
	case ')':
		t = tok(RPAREN, ")")
	case ';':
		t = tok(SEMICOLON, ";")
	case ',':
		t = tok(COMMA, ",")
	case '<':
		t = tok(LT, "<")
	case '>':
		t = tok(GT, ">")
	case '*':
		t = tok(STAR, "*")
	case '&':
		t = tok(AMP, "&")
	case '=':
		t = tok(ASSIGN, "=")
	case 0:
		if l.atEOF() {
			return tok(EOF, "")
		}
		t = tok(ILLEGAL, "\x00")
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			return tok(LookupIdent(ident), ident)
		}
		if isDigit(l.ch) {
			return tok(INT_LIT, l.readNumber())
		}
		t = tok(ILLEGAL, string(l.ch))
	}

	l.readChar()
	return t
}

// Tokenize returns all tokens from the input, ending with EOF
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			break
		}
	}
	return tokens
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}
