package lexer

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENT   // Point, vector, int32_t
	INT_LIT // 42, 0x2A

	// Keywords
	ENUM
	STRUCT
	CALLBACK
	INTERFACE
	CLASS
	CONST

	// Punctuation
	LBRACE    // {
	RBRACE    // }
	LPAREN    // (
	RPAREN    // )
	SEMICOLON // ;
	COMMA     // ,
	LT        // <
	GT        // >
	STAR      // *
	AMP       // &
	ASSIGN    // =
	MINUS     // -
	ARROW     // ->
)

// Token represents a lexical token with position information
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	switch t {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case IDENT:
		return "identifier"
	case INT_LIT:
		return "integer"
	case ENUM:
		return "enum"
	case STRUCT:
		return "struct"
	case CALLBACK:
		return "callback"
	case INTERFACE:
		return "interface"
	case CLASS:
		return "class"
	case CONST:
		return "const"
	case LBRACE:
		return "'{'"
	case RBRACE:
		return "'}'"
	case LPAREN:
		return "'('"
	case RPAREN:
		return "')'"
	case SEMICOLON:
		return "';'"
	case COMMA:
		return "','"
	case LT:
		return "'<'"
	case GT:
		return "'>'"
	case STAR:
		return "'*'"
	case AMP:
		return "'&'"
	case ASSIGN:
		return "'='"
	case MINUS:
		return "'-'"
	case ARROW:
		return "'->'"
	default:
		return fmt.Sprintf("TokenType(%d)", t)
	}
}

// keywords maps keyword strings to their token types
var keywords = map[string]TokenType{
	"enum":      ENUM,
	"struct":    STRUCT,
	"callback":  CALLBACK,
	"interface": INTERFACE,
	"class":     CLASS,
	"const":     CONST,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether s is reserved by the IDL.
func IsKeyword(s string) bool {
	_, ok := keywords[s]
	return ok
}
