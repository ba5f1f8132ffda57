package parser

import (
	"fmt"

	"github.com/lhaig/idlgen/internal/diagnostic"
	"github.com/lhaig/idlgen/internal/lexer"
)

// syntaxError marks the token at which a construct stopped matching its
// grammar. It never escapes the package: the parser turns it into a
// diagnostic and omits the construct.
type syntaxError struct {
	tok lexer.Token
	msg string
}

func (e *syntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.tok.Line, e.tok.Column, e.msg)
}

// Parser holds the parser state
type Parser struct {
	tokens []lexer.Token
	pos    int
	diags  *diagnostic.Diagnostics
	strict bool
}

// current returns the current token
func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without consuming
func (p *Parser) peek() lexer.Token {
	if p.pos+1 >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token and returns the consumed token
func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches the expected type
func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	tok := p.current()
	if tok.Type != tt {
		return tok, p.unexpected(tok, tt.String())
	}
	return p.advance(), nil
}

// check returns true if the current token is of the given type
func (p *Parser) check(tt lexer.TokenType) bool {
	return p.current().Type == tt
}

// match consumes the current token if it matches, returns true if consumed
func (p *Parser) match(tt lexer.TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorf(tok lexer.Token, format string, args ...interface{}) error {
	return &syntaxError{tok: tok, msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) unexpected(tok lexer.Token, want string) error {
	switch tok.Type {
	case lexer.EOF:
		return p.errorf(tok, "expected %s, got end of file", want)
	case lexer.ILLEGAL:
		return p.errorf(tok, "expected %s, got illegal input %q", want, tok.Literal)
	default:
		return p.errorf(tok, "expected %s, got %q", want, tok.Literal)
	}
}

// skipped records that a construct was omitted. Lenient parsing reports
// a warning; strict parsing reports an error.
func (p *Parser) skipped(what string, err error) {
	se, ok := err.(*syntaxError)
	if !ok {
		se = &syntaxError{tok: p.current(), msg: err.Error()}
	}
	msg := fmt.Sprintf("skipped %s: %s", what, se.msg)
	if p.strict {
		p.diags.Errorf(se.tok.Line, se.tok.Column, "%s", msg)
	} else {
		p.diags.Warningf(se.tok.Line, se.tok.Column, "%s", msg)
	}
}

// skipDecl discards the remainder of a malformed top-level declaration:
// everything up to a ';' outside braces or the '}' closing the outermost
// brace, plus an optional trailing ';'.
func (p *Parser) skipDecl() {
	depth := 0
	for !p.check(lexer.EOF) {
		// a declaration keyword outside braces begins the next construct
		if depth == 0 && startsDecl(p.current().Type) {
			return
		}
		switch p.advance().Type {
		case lexer.LBRACE:
			depth++
		case lexer.RBRACE:
			depth--
			if depth <= 0 {
				p.match(lexer.SEMICOLON)
				return
			}
		case lexer.SEMICOLON:
			if depth == 0 {
				return
			}
		}
	}
}

// skipItem discards the remainder of a malformed body item. It stops after
// the terminator at the current nesting level, or before the '}' closing
// the enclosing body.
func (p *Parser) skipItem(terminator lexer.TokenType) {
	depth := 0
	for !p.check(lexer.EOF) {
		switch p.current().Type {
		case lexer.LBRACE, lexer.LPAREN:
			depth++
		case lexer.RPAREN:
			if depth > 0 {
				depth--
			}
		case lexer.RBRACE:
			if depth == 0 {
				return
			}
			depth--
		case terminator:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

func startsDecl(tt lexer.TokenType) bool {
	switch tt {
	case lexer.ENUM, lexer.STRUCT, lexer.CALLBACK, lexer.INTERFACE, lexer.CLASS:
		return true
	}
	return false
}
