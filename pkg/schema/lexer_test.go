package schema

import "testing"

func TestLexerKeywords(t *testing.T) {
	input := "table enum struct"

	expected := []struct {
		typ   TokenType
		value string
	}{
		{TokenTable, "table"},
		{TokenEnum, "enum"},
		{TokenStruct, "struct"},
		{TokenEOF, ""},
	}

	lexer := NewLexer("test.seria", input)
	for i, exp := range expected {
		tok := lexer.Next()
		if tok.Type != exp.typ {
			t.Errorf("token %d: expected type %v, got %v", i, exp.typ, tok.Type)
		}
		if tok.Value != exp.value {
			t.Errorf("token %d: expected value %q, got %q", i, exp.value, tok.Value)
		}
	}
}

func TestLexerKeywordsCaseInsensitive(t *testing.T) {
	input := "TABLE Enum STRUCT"
	expected := []TokenType{TokenTable, TokenEnum, TokenStruct}

	lexer := NewLexer("test.seria", input)
	for i, exp := range expected {
		tok := lexer.Next()
		if tok.Type != exp {
			t.Errorf("token %d: expected type %v, got %v", i, exp, tok.Type)
		}
	}
}

func TestLexerIdentifiers(t *testing.T) {
	input := "foo Bar _private camelCase snake_case PascalCase my.pkg.Thing"

	expected := []string{"foo", "Bar", "_private", "camelCase", "snake_case", "PascalCase", "my.pkg.Thing"}

	lexer := NewLexer("test.seria", input)
	for i, exp := range expected {
		tok := lexer.Next()
		if tok.Type != TokenIdentifier {
			t.Errorf("token %d: expected Identifier, got %v", i, tok.Type)
		}
		if tok.Value != exp {
			t.Errorf("token %d: expected %q, got %q", i, exp, tok.Value)
		}
	}
}

func TestLexerBooleans(t *testing.T) {
	tests := []struct {
		input string
		value int64
	}{
		{"true", 1},
		{"false", 0},
		{"TRUE", 1},
		{"False", 0},
	}
	for _, tt := range tests {
		lexer := NewLexer("test.seria", tt.input)
		tok := lexer.Next()
		if tok.Type != TokenNumber {
			t.Fatalf("%q: expected Number, got %v", tt.input, tok.Type)
		}
		if tok.NumberValue != tt.value {
			t.Errorf("%q: expected %d, got %d", tt.input, tt.value, tok.NumberValue)
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input string
		value int64
	}{
		{"0", 0},
		{"123", 123},
		{"999999", 999999},
		{"0x10", 16},
		{"0xFF", 255},
		{"0Xa", 10},
	}
	for _, tt := range tests {
		lexer := NewLexer("test.seria", tt.input)
		tok := lexer.Next()
		if tok.Type != TokenNumber {
			t.Fatalf("%q: expected Number, got %v", tt.input, tok.Type)
		}
		if tok.NumberValue != tt.value {
			t.Errorf("%q: expected %d, got %d", tt.input, tt.value, tok.NumberValue)
		}
	}
}

func TestLexerCharLiterals(t *testing.T) {
	tests := []struct {
		input string
		value int64
	}{
		{`'a'`, 'a'},
		{`'\n'`, '\n'},
		{`'\t'`, '\t'},
		{`'\\'`, '\\'},
		{`'\''`, '\''},
		{`'\0'`, '0'},
	}
	for _, tt := range tests {
		lexer := NewLexer("test.seria", tt.input)
		tok := lexer.Next()
		if tok.Type != TokenNumber {
			t.Fatalf("%q: expected Number, got %v", tt.input, tok.Type)
		}
		if tok.NumberValue != tt.value {
			t.Errorf("%q: expected %d, got %d", tt.input, tt.value, tok.NumberValue)
		}
	}
}

func TestLexerStrings(t *testing.T) {
	lexer := NewLexer("test.seria", `"anon" "hello world"`)

	tok := lexer.Next()
	if tok.Type != TokenString || tok.Value != "anon" {
		t.Fatalf("expected String(anon), got %v(%q)", tok.Type, tok.Value)
	}
	tok = lexer.Next()
	if tok.Type != TokenString || tok.Value != "hello world" {
		t.Fatalf("expected String(hello world), got %v(%q)", tok.Type, tok.Value)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	lexer := NewLexer("test.seria", `"no closing quote`)
	tok := lexer.Next()
	if tok.Type != TokenError {
		t.Fatalf("expected Error, got %v", tok.Type)
	}
}

func TestLexerStringRejectsNewline(t *testing.T) {
	lexer := NewLexer("test.seria", "\"line one\nline two\"")
	tok := lexer.Next()
	if tok.Type != TokenError {
		t.Fatalf("expected Error, got %v", tok.Type)
	}
}

func TestLexerPunctuation(t *testing.T) {
	input := ":;,=[]{}"
	expected := []TokenType{
		TokenColon, TokenSemicolon, TokenComma, TokenEquals,
		TokenOpenBracket, TokenCloseBracket, TokenOpenBrace, TokenCloseBrace,
	}

	lexer := NewLexer("test.seria", input)
	for i, exp := range expected {
		tok := lexer.Next()
		if tok.Type != exp {
			t.Errorf("token %d: expected %v, got %v", i, exp, tok.Type)
		}
	}
}

func TestLexerComments(t *testing.T) {
	input := `
		// line comment
		foo /* block
		comment */ bar
	`
	expected := []string{"foo", "bar"}

	lexer := NewLexer("test.seria", input)
	for i, exp := range expected {
		tok := lexer.Next()
		if tok.Type != TokenIdentifier {
			t.Fatalf("token %d: expected Identifier, got %v", i, tok.Type)
		}
		if tok.Value != exp {
			t.Errorf("token %d: expected %q, got %q", i, exp, tok.Value)
		}
	}
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	lexer := NewLexer("test.seria", "@")
	tok := lexer.Next()
	if tok.Type != TokenError {
		t.Fatalf("expected Error, got %v", tok.Type)
	}
}

func TestTokenizeEmptyInput(t *testing.T) {
	tokens := Tokenize("test.seria", "")
	if len(tokens) != 1 || tokens[0].Type != TokenEOF {
		t.Fatalf("expected single EOF token, got %v", tokens)
	}
}

func TestTokenizePosition(t *testing.T) {
	tokens := Tokenize("test.seria", "foo\nbar")
	if len(tokens) < 2 {
		t.Fatalf("expected at least 2 tokens, got %d", len(tokens))
	}
	if tokens[0].Position.Line != 1 {
		t.Errorf("expected foo on line 1, got %d", tokens[0].Position.Line)
	}
	if tokens[1].Position.Line != 2 {
		t.Errorf("expected bar on line 2, got %d", tokens[1].Position.Line)
	}
}
