package parser

import (
	"math"
	"strconv"

	"github.com/lhaig/idlgen/internal/diagnostic"
	"github.com/lhaig/idlgen/internal/lexer"
	"github.com/lhaig/idlgen/internal/model"
)

// New creates a parser for the IDL source of the file with the given stem.
// A strict parser reports skipped constructs as errors instead of warnings.
func New(file, source string, strict bool) *Parser {
	return &Parser{
		tokens: lexer.New(source).Tokenize(),
		diags:  diagnostic.ForFile(file),
		strict: strict,
	}
}

// ParseFile parses source into the model of the file named by stem.
func ParseFile(stem, source string, strict bool) (*model.File, *diagnostic.Diagnostics) {
	p := New(stem, source, strict)
	f := p.Parse()
	f.Name = stem
	return f, p.Diagnostics()
}

// Diagnostics returns the parser's diagnostics
func (p *Parser) Diagnostics() *diagnostic.Diagnostics {
	return p.diags
}

// Parse parses the token stream into a File. Constructs that do not match
// their grammar are omitted and reported.
func (p *Parser) Parse() *model.File {
	f := &model.File{}

	for !p.check(lexer.EOF) {
		tok := p.current()
		switch tok.Type {
		case lexer.ENUM:
			if e, err := p.parseEnum(); err != nil {
				p.skipped("enum", err)
				p.skipDecl()
			} else {
				f.Enums = append(f.Enums, e)
			}
		case lexer.STRUCT:
			if s, err := p.parseStruct(); err != nil {
				p.skipped("struct", err)
				p.skipDecl()
			} else {
				f.Structs = append(f.Structs, s)
			}
		case lexer.CALLBACK:
			if cb, err := p.parseCallback(); err != nil {
				p.skipped("callback", err)
				p.skipDecl()
			} else {
				f.Callbacks = append(f.Callbacks, cb)
			}
		case lexer.INTERFACE, lexer.CLASS:
			if c, err := p.parseClass(); err != nil {
				p.skipped(tok.Literal, err)
				p.skipDecl()
			} else {
				f.Classes = append(f.Classes, c)
			}
		case lexer.SEMICOLON:
			p.advance()
		default:
			p.skipped("top-level input", p.errorf(tok, "expected enum, struct, callback, interface or class, got %q", tok.Literal))
			start := p.pos
			p.skipDecl()
			if p.pos == start {
				p.advance()
			}
		}
	}
	return f
}

// parseEnum parses: enum Name { A [= int], B, ... } [;]
func (p *Parser) parseEnum() (model.Enum, error) {
	tok := p.advance()
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return model.Enum{}, err
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return model.Enum{}, err
	}

	e := model.Enum{Pos: pos(tok), Name: name.Literal}
	seen := make(map[string]bool)
	next, overflow := int64(0), false
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		v, err := p.parseEnumValue(next, overflow)
		if err != nil {
			p.skipped("enumerator in enum "+e.Name, err)
			p.skipItem(lexer.COMMA)
			continue
		}
		if seen[v.Name] {
			p.skipped("enumerator in enum "+e.Name, &syntaxError{
				tok: lexer.Token{Line: v.Line, Column: v.Column},
				msg: "duplicate enumerator '" + v.Name + "'",
			})
		} else {
			seen[v.Name] = true
			e.Values = append(e.Values, v)
		}
		next, overflow = v.Value+1, v.Value == math.MaxInt64
		if !p.match(lexer.COMMA) && !p.check(lexer.RBRACE) {
			return model.Enum{}, p.unexpected(p.current(), "',' or '}'")
		}
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return model.Enum{}, err
	}
	p.match(lexer.SEMICOLON)
	return e, nil
}

// parseEnumValue parses: Name [= [-]int]. An implicit value past the
// largest int64 is an error.
func (p *Parser) parseEnumValue(next int64, overflow bool) (model.EnumValue, error) {
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return model.EnumValue{}, err
	}
	v := model.EnumValue{Pos: pos(name), Name: name.Literal, Value: next}
	if !p.match(lexer.ASSIGN) {
		if overflow {
			return model.EnumValue{}, p.errorf(name, "value of '%s' overflows int64", name.Literal)
		}
		return v, nil
	}
	sign := ""
	if p.match(lexer.MINUS) {
		sign = "-"
	}
	lit, err := p.expect(lexer.INT_LIT)
	if err != nil {
		return model.EnumValue{}, err
	}
	n, convErr := strconv.ParseInt(sign+lit.Literal, 0, 64)
	if convErr != nil {
		return model.EnumValue{}, p.errorf(lit, "integer %s%s out of range", sign, lit.Literal)
	}
	v.Value = n
	v.Explicit = true
	return v, nil
}

// parseStruct parses: struct Name { Type name; ... } [;]
func (p *Parser) parseStruct() (model.Struct, error) {
	tok := p.advance()
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return model.Struct{}, err
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return model.Struct{}, err
	}

	s := model.Struct{Pos: pos(tok), Name: name.Literal}
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		m, err := p.parseStructMember()
		if err != nil {
			p.skipped("member of struct "+s.Name, err)
			p.skipItem(lexer.SEMICOLON)
			continue
		}
		s.Members = append(s.Members, m)
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return model.Struct{}, err
	}
	p.match(lexer.SEMICOLON)
	return s, nil
}

// parseStructMember parses: Type name;
func (p *Parser) parseStructMember() (model.Member, error) {
	start := p.current()
	if start.Type == lexer.CONST {
		return model.Member{}, p.errorf(start, "struct members cannot be const")
	}
	typ, err := p.parseType()
	if err != nil {
		return model.Member{}, err
	}
	if isVector(typ) {
		return model.Member{}, p.errorf(start, "vector members are not supported in structs")
	}
	if tok := p.current(); tok.Type == lexer.STAR || tok.Type == lexer.AMP {
		return model.Member{}, p.errorf(tok, "struct members cannot be pointers or references")
	}
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return model.Member{}, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return model.Member{}, err
	}
	return model.Member{Pos: pos(start), Name: name.Literal, Type: typ}, nil
}

// parseCallback parses: callback Name(params) -> ReturnType;
func (p *Parser) parseCallback() (model.Callback, error) {
	tok := p.advance()
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return model.Callback{}, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return model.Callback{}, err
	}
	if _, err := p.expect(lexer.ARROW); err != nil {
		return model.Callback{}, err
	}
	ret, err := p.parseType()
	if err != nil {
		return model.Callback{}, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return model.Callback{}, err
	}
	return model.Callback{Pos: pos(tok), Name: name.Literal, ReturnType: ret, Params: params}, nil
}

// parseClass parses: interface|class Name { items } [;]
func (p *Parser) parseClass() (model.Class, error) {
	tok := p.advance()
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return model.Class{}, err
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return model.Class{}, err
	}

	c := model.Class{Pos: pos(tok), Name: name.Literal}
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		if p.match(lexer.SEMICOLON) {
			continue
		}
		if err := p.parseClassItem(&c); err != nil {
			p.skipped("declaration in "+tok.Literal+" "+c.Name, err)
			p.skipItem(lexer.SEMICOLON)
		}
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return model.Class{}, err
	}
	p.match(lexer.SEMICOLON)
	return c, nil
}

// parseClassItem parses one of:
//
//	Name(params);                               constructor
//	[const] Type [*|&] name(params) [const];   method
//	Type name;                                  attribute
func (p *Parser) parseClassItem(c *model.Class) error {
	start := p.current()

	if start.Type == lexer.IDENT && start.Literal == c.Name && p.peek().Type == lexer.LPAREN {
		p.advance()
		params, err := p.parseParamList()
		if err != nil {
			return err
		}
		if _, err := p.expect(lexer.SEMICOLON); err != nil {
			return err
		}
		if c.Constructor() != nil {
			return p.errorf(start, "duplicate constructor for %s", c.Name)
		}
		c.Methods = append(c.Methods, model.Method{
			Pos:           pos(start),
			Name:          c.Name,
			ReturnType:    "void",
			Params:        params,
			IsConstructor: true,
		})
		return nil
	}

	qualified := p.match(lexer.CONST)
	typ, err := p.parseType()
	if err != nil {
		return err
	}
	pointer := false
	switch {
	case p.match(lexer.STAR):
		pointer = true
		qualified = true
	case p.match(lexer.AMP):
		qualified = true
	}
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return err
	}

	if p.check(lexer.SEMICOLON) {
		if qualified {
			return p.errorf(start, "attribute %s cannot be qualified", name.Literal)
		}
		if isVector(typ) {
			return p.errorf(start, "vector attributes are not supported; declare a method instead")
		}
		p.advance()
		c.Attributes = append(c.Attributes, model.Member{Pos: pos(start), Name: name.Literal, Type: typ})
		return nil
	}

	params, err := p.parseParamList()
	if err != nil {
		return err
	}
	isConst := p.match(lexer.CONST)
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return err
	}
	c.Methods = append(c.Methods, model.Method{
		Pos:           pos(start),
		Name:          name.Literal,
		ReturnType:    typ,
		ReturnPointer: pointer,
		Params:        params,
		IsConst:       isConst,
	})
	return nil
}

// parseParamList parses: ( [param {, param}] )
func (p *Parser) parseParamList() ([]model.Param, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var params []model.Param
	if p.match(lexer.RPAREN) {
		return params, nil
	}
	for {
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if p.match(lexer.COMMA) {
			continue
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return params, nil
	}
}

// parseParam parses: [const] Type [*|&] name
func (p *Parser) parseParam() (model.Param, error) {
	start := p.current()
	param := model.Param{Pos: pos(start)}
	param.Const = p.match(lexer.CONST)

	typ, err := p.parseType()
	if err != nil {
		return model.Param{}, err
	}
	param.Type = typ

	switch {
	case p.match(lexer.STAR):
		param.Pointer = true
	case p.match(lexer.AMP):
		param.Reference = true
	}
	if tok := p.current(); tok.Type == lexer.STAR || tok.Type == lexer.AMP {
		return model.Param{}, p.errorf(tok, "parameter may be a pointer or a reference, not both")
	}

	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return model.Param{}, err
	}
	param.Name = name.Literal
	return param, nil
}

// parseType parses a bare identifier or vector<Identifier>
func (p *Parser) parseType() (string, error) {
	tok, err := p.expect(lexer.IDENT)
	if err != nil {
		if tok.Type == lexer.CONST || lexer.IsKeyword(tok.Literal) {
			return "", p.errorf(tok, "expected type, got keyword %q", tok.Literal)
		}
		return "", err
	}
	if tok.Literal != "vector" {
		if p.check(lexer.LT) {
			return "", p.errorf(p.current(), "only vector<T> takes a type argument")
		}
		return tok.Literal, nil
	}
	if _, err := p.expect(lexer.LT); err != nil {
		return "", err
	}
	elem, err := p.expect(lexer.IDENT)
	if err != nil {
		return "", err
	}
	if elem.Literal == "vector" {
		return "", p.errorf(elem, "nested vector types are not supported")
	}
	if _, err := p.expect(lexer.GT); err != nil {
		return "", err
	}
	return "vector<" + elem.Literal + ">", nil
}

func isVector(t string) bool {
	return len(t) > 7 && t[:7] == "vector<"
}

func pos(tok lexer.Token) model.Pos {
	return model.Pos{Line: tok.Line, Column: tok.Column}
}
