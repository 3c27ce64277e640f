package schema

import "fmt"

// ParseError is a fatal, positional parser failure.
type ParseError struct {
	Position Position
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Position, e.Message)
}

// Parser parses schema source code into a Schema AST.
type Parser struct {
	lexer   *Lexer
	current Token
	errors  []*ParseError
}

// NewParser creates a new parser for the given input.
func NewParser(filename, input string) *Parser {
	p := &Parser{lexer: NewLexer(filename, input)}
	p.advance()
	return p
}

// Parse parses the entire schema file, grammar:
//
//	schema       := definition+
//	definition   := enum_def | struct_def | table_def
//	enum_def     := ENUM id (COLON id)? OBRACE enum_members CBRACE
//	enum_members := enum_member (sep enum_member)* sep?
//	sep          := COMMA | SEMICOLON
//	enum_member  := id (EQUALS number)?
//	struct_def   := STRUCT id OBRACE member* CBRACE
//	table_def    := TABLE  id OBRACE member* CBRACE
//	member       := id COLON type (EQUALS literal)? SEMICOLON
//	type         := id | OBRACK id CBRACK | OBRACK id COLON number CBRACK
//	literal      := number | string
func (p *Parser) Parse() (*Schema, []*ParseError) {
	s := NewSchema()
	s.Position = p.current.Position

	for !p.check(TokenEOF) {
		var decl Declaration
		var err *ParseError

		switch p.current.Type {
		case TokenEnum:
			decl, err = p.parseEnum()
		case TokenStruct:
			decl, err = p.parseAggregate(KindStruct)
		case TokenTable:
			decl, err = p.parseAggregate(KindTable)
		default:
			err = p.errorf("expected 'enum', 'struct', or 'table', got %s", p.current.Type)
		}

		if err != nil {
			p.errors = append(p.errors, err)
			p.synchronize()
			continue
		}
		s.Add(decl)
	}

	return s, p.errors
}

func (p *Parser) parseEnum() (*EnumDeclaration, *ParseError) {
	pos := p.current.Position
	p.advance() // enum

	name, err := p.expectIdentifier("expected enum name")
	if err != nil {
		return nil, err
	}

	sizeName := "uint16"
	if p.check(TokenColon) {
		p.advance()
		sizeName, err = p.expectIdentifier("expected enum underlying type")
		if err != nil {
			return nil, err
		}
	}

	if err := p.expect(TokenOpenBrace, "expected '{' after enum name"); err != nil {
		return nil, err
	}

	e := &EnumDeclaration{Position: pos, Name: name, SizeName: sizeName}

	for {
		member, err := p.parseEnumMember()
		if err != nil {
			return nil, err
		}
		e.Members = append(e.Members, member)

		if p.check(TokenComma) || p.check(TokenSemicolon) {
			p.advance()
			if p.check(TokenCloseBrace) {
				break
			}
			continue
		}
		break
	}

	if err := p.expect(TokenCloseBrace, "expected '}' to close enum"); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *Parser) parseEnumMember() (*EnumMember, *ParseError) {
	pos := p.current.Position
	name, err := p.expectIdentifier("expected enum member name")
	if err != nil {
		return nil, err
	}

	m := &EnumMember{Position: pos, Name: name}
	if p.check(TokenEquals) {
		p.advance()
		if !p.check(TokenNumber) {
			return nil, p.errorf("expected number after '=' in enum member %q", name)
		}
		m.Value = p.current.NumberValue
		m.HasExplicitValue = true
		p.advance()
	}
	return m, nil
}

func (p *Parser) parseAggregate(kind Kind) (*AggregateDeclaration, *ParseError) {
	pos := p.current.Position
	p.advance() // struct | table

	label := "struct"
	if kind == KindTable {
		label = "table"
	}
	name, err := p.expectIdentifier("expected " + label + " name")
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenOpenBrace, "expected '{' after "+label+" name"); err != nil {
		return nil, err
	}

	a := &AggregateDeclaration{Position: pos, Name: name, Kind: kind}
	for !p.check(TokenCloseBrace) {
		if p.check(TokenEOF) {
			return nil, p.errorf("unexpected end of file inside %s %q", label, name)
		}
		member, err := p.parseMember()
		if err != nil {
			return nil, err
		}
		a.Members = append(a.Members, member)
	}
	p.advance() // }
	return a, nil
}

func (p *Parser) parseMember() (*Member, *ParseError) {
	pos := p.current.Position
	name, err := p.expectIdentifier("expected member name")
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenColon, "expected ':' after member name"); err != nil {
		return nil, err
	}

	m := &Member{Position: pos, Name: name}

	if p.check(TokenOpenBracket) {
		p.advance() // [
		typeName, err := p.expectIdentifier("expected element type in vector")
		if err != nil {
			return nil, err
		}
		m.TypeName = typeName
		m.Vector = true

		if p.check(TokenColon) {
			p.advance()
			if !p.check(TokenNumber) {
				return nil, p.errorf("expected fixed vector size after ':'")
			}
			m.VectorSize = int(p.current.NumberValue)
			m.HasVectorSize = true
			p.advance()
		}

		if err := p.expect(TokenCloseBracket, "expected ']' to close vector type"); err != nil {
			return nil, err
		}
	} else {
		typeName, err := p.expectIdentifier("expected member type")
		if err != nil {
			return nil, err
		}
		m.TypeName = typeName
	}

	if p.check(TokenEquals) {
		p.advance()
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		m.Default = lit
	}

	if err := p.expect(TokenSemicolon, "expected ';' after member"); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *Parser) parseLiteral() (*Literal, *ParseError) {
	pos := p.current.Position
	switch p.current.Type {
	case TokenNumber:
		lit := &Literal{Position: pos, Int: p.current.NumberValue}
		p.advance()
		return lit, nil
	case TokenString:
		lit := &Literal{Position: pos, IsString: true, Str: p.current.Value}
		p.advance()
		return lit, nil
	default:
		return nil, p.errorf("expected number or string literal")
	}
}

// Helpers

func (p *Parser) advance() {
	p.current = p.lexer.Next()
	if p.current.Type == TokenError {
		p.errors = append(p.errors, &ParseError{Position: p.current.Position, Message: p.current.Value})
	}
}

func (p *Parser) check(typ TokenType) bool {
	return p.current.Type == typ
}

func (p *Parser) expect(typ TokenType, msg string) *ParseError {
	if p.check(typ) {
		p.advance()
		return nil
	}
	return p.errorf("%s (got %s)", msg, p.current.Type)
}

func (p *Parser) expectIdentifier(msg string) (string, *ParseError) {
	if !p.check(TokenIdentifier) {
		return "", p.errorf("%s (got %s)", msg, p.current.Type)
	}
	name := p.current.Value
	p.advance()
	return name, nil
}

func (p *Parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Position: p.current.Position, Message: fmt.Sprintf(format, args...)}
}

// synchronize skips tokens until the next likely definition boundary, so
// parsing can continue after an error and collect further diagnostics.
func (p *Parser) synchronize() {
	for !p.check(TokenEOF) {
		switch p.current.Type {
		case TokenEnum, TokenStruct, TokenTable:
			return
		}
		p.advance()
	}
}

// ParseFile is a convenience function that parses a schema file.
func ParseFile(filename, input string) (*Schema, []*ParseError) {
	return NewParser(filename, input).Parse()
}
