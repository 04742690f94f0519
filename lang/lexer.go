package lang

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer produces VTC tokens on demand from a source string.
//
// Tokens are lexed lazily: each call to Next advances exactly one token.
// Reset restarts the stream from the beginning of the input. Once the end of
// input is reached, Next keeps returning a KindEOF token.
type Lexer struct {
	input []byte
	pos   int
	line  int
	col   int
}

// NewLexer creates a Lexer over the given source.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: []byte(input)}
	l.Reset()

	return l
}

// Reset restarts the token stream from the beginning of the input.
func (l *Lexer) Reset() {
	l.pos = 0
	l.line = 1
	l.col = 1
}

// Next returns the next token in the stream.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespaceAndComments()

	pos := l.position()

	if l.eof() {
		return Token{Kind: KindEOF, Pos: pos}, nil
	}

	ch := l.peek()

	switch {
	case ch == '@':
		return l.lexNamespace(pos)
	case ch == '$':
		return l.lexVariable(pos)
	case ch == ':':
		return l.lexAssign(pos)
	case ch == '[':
		l.advance()

		return Token{Kind: KindOpenBracket, Text: "[", Pos: pos}, nil
	case ch == ']':
		l.advance()

		return Token{Kind: KindCloseBracket, Text: "]", Pos: pos}, nil
	case ch == ',':
		l.advance()

		return Token{Kind: KindComma, Text: ",", Pos: pos}, nil
	case ch == '"' || ch == '\'':
		return l.lexString(pos, ch)
	case ch == '&' || ch == '%':
		return l.lexReference(pos)
	case ch == '-' || isDigit(ch):
		return l.lexNumber(pos)
	case isIdentifierStart(ch):
		return l.lexWord(pos)
	default:
		return Token{Kind: KindInvalid, Pos: pos}, ErrLex.WithPosition(pos).
			With(slog.String("rune", string(ch)))
	}
}

// lexNamespace lexes '@' identifier ':' as a single namespace token.
// Whitespace is permitted between the identifier and the colon.
func (l *Lexer) lexNamespace(pos Position) (Token, error) {
	l.advance() // skip '@'

	name, err := l.lexIdentifier()
	if err != nil {
		return Token{Kind: KindInvalid, Pos: pos}, err
	}

	l.skipWhitespaceAndComments()

	if l.peek() != ':' {
		return Token{Kind: KindInvalid, Pos: pos}, ErrLex.
			WithPosition(l.position()).
			With(
				slog.String("expected", ":"),
				slog.String("namespace", name),
			)
	}

	l.advance() // skip ':'

	return Token{Kind: KindNamespace, Text: name, Pos: pos}, nil
}

// lexVariable lexes '$' identifier.
func (l *Lexer) lexVariable(pos Position) (Token, error) {
	l.advance() // skip '$'

	name, err := l.lexIdentifier()
	if err != nil {
		return Token{Kind: KindInvalid, Pos: pos}, err
	}

	return Token{Kind: KindVariable, Text: name, Pos: pos}, nil
}

// lexAssign lexes the ':=' operator. A bare ':' is invalid here because the
// namespace colon is consumed by lexNamespace.
func (l *Lexer) lexAssign(pos Position) (Token, error) {
	l.advance() // skip ':'

	if l.peek() != '=' {
		return Token{Kind: KindInvalid, Pos: pos}, ErrLex.WithPosition(pos).
			With(slog.String("expected", ":="))
	}

	l.advance() // skip '='

	return Token{Kind: KindAssign, Text: ":=", Pos: pos}, nil
}

// lexString lexes a quoted string literal, decoding escape sequences.
func (l *Lexer) lexString(pos Position, quote rune) (Token, error) {
	l.advance() // skip opening quote

	var b strings.Builder

	for {
		if l.eof() || l.peek() == '\n' {
			return Token{Kind: KindInvalid, Pos: pos}, ErrLex.
				WithPosition(pos).
				With(slog.String("error", "unterminated string"))
		}

		ch := l.peek()

		if ch == quote {
			l.advance() // skip closing quote

			return Token{Kind: KindString, Text: b.String(), Pos: pos}, nil
		}

		if ch == '\\' {
			l.advance() // skip backslash

			decoded, err := l.lexEscape(quote)
			if err != nil {
				return Token{Kind: KindInvalid, Pos: pos}, err
			}

			b.WriteRune(decoded)

			continue
		}

		b.WriteRune(ch)
		l.advance()
	}
}

// lexEscape decodes the character following a backslash.
func (l *Lexer) lexEscape(quote rune) (rune, error) {
	if l.eof() {
		return 0, ErrLex.WithPosition(l.position()).
			With(slog.String("error", "unterminated escape sequence"))
	}

	ch := l.peek()
	l.advance()

	switch ch {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '0':
		return 0, nil
	case '\\', '"', '\'':
		return ch, nil
	default:
		if ch == quote {
			return ch, nil
		}

		return 0, ErrLex.WithPosition(l.position()).
			With(slog.String("escape", "\\"+string(ch)))
	}
}

// lexNumber lexes integer, float, binary, and hexadecimal literals.
// The token text excludes the base prefix for binary and hexadecimal.
func (l *Lexer) lexNumber(pos Position) (Token, error) {
	start := l.pos

	neg := false

	if l.peek() == '-' {
		neg = true

		l.advance()

		if !isDigit(l.peek()) {
			return Token{Kind: KindInvalid, Pos: pos}, ErrLex.
				WithPosition(pos).
				With(slog.String("expected", "digit after '-'"))
		}
	}

	if l.peek() == '0' {
		switch l.peekAt(1) {
		case 'b':
			return l.lexRadix(pos, KindBinary, isBinaryDigit, neg)
		case 'x':
			return l.lexRadix(pos, KindHexadecimal, isHexDigit, neg)
		}
	}

	for !l.eof() && isDigit(l.peek()) {
		l.advance()
	}

	// Fraction requires a digit after the dot. A bare trailing dot belongs
	// to the next token (e.g. a range "0..3" never reaches here).
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance() // skip '.'

		for !l.eof() && isDigit(l.peek()) {
			l.advance()
		}

		return Token{
			Kind: KindFloat,
			Text: string(l.input[start:l.pos]),
			Pos:  pos,
		}, nil
	}

	return Token{
		Kind: KindInteger,
		Text: string(l.input[start:l.pos]),
		Pos:  pos,
	}, nil
}

// lexRadix lexes the digits of a 0b or 0x literal.
// The lexer is positioned at the leading '0'. A sign consumed by lexNumber
// is carried into the token text so the parsed magnitude stays negated.
func (l *Lexer) lexRadix(
	pos Position,
	kind Kind,
	valid func(rune) bool,
	neg bool,
) (Token, error) {
	l.advance() // skip '0'
	l.advance() // skip 'b' or 'x'

	start := l.pos

	for !l.eof() && valid(l.peek()) {
		l.advance()
	}

	if l.pos == start {
		return Token{Kind: KindInvalid, Pos: pos}, ErrLex.WithPosition(pos).
			With(slog.String("expected", kind.String()+" digits"))
	}

	text := string(l.input[start:l.pos])
	if neg {
		text = "-" + text
	}

	return Token{
		Kind: kind,
		Text: text,
		Pos:  pos,
	}, nil
}

// lexReference lexes a '&' or '%' reference, including any trailing
// accessors, as a single raw token. The parser decomposes the text.
func (l *Lexer) lexReference(pos Position) (Token, error) {
	start := l.pos

	l.advance() // skip '&' or '%'

	if !isIdentifierStart(l.peek()) {
		return Token{Kind: KindInvalid, Pos: pos}, ErrLex.WithPosition(pos).
			With(slog.String("expected", "identifier"))
	}

	for !l.eof() {
		ch := l.peek()
		if isIdentifierContinue(ch) {
			l.advance()

			continue
		}

		// Dotted namespace.variable path
		if ch == '.' && isIdentifierStart(l.peekAt(1)) {
			l.advance()

			continue
		}

		break
	}

	// Accessor chain: ->(...) or ->[...]
	for l.peek() == '-' && l.peekAt(1) == '>' {
		l.advance() // skip '-'
		l.advance() // skip '>'

		var closing rune

		switch l.peek() {
		case '(':
			closing = ')'
		case '[':
			closing = ']'
		default:
			return Token{Kind: KindInvalid, Pos: pos}, ErrLex.
				WithPosition(l.position()).
				With(slog.String("expected", "'(' or '[' after '->'"))
		}

		l.advance() // skip opening delimiter

		for !l.eof() && l.peek() != closing && l.peek() != '\n' {
			l.advance()
		}

		if l.peek() != closing {
			return Token{Kind: KindInvalid, Pos: pos}, ErrLex.
				WithPosition(l.position()).
				With(slog.String("expected", string(closing)))
		}

		l.advance() // skip closing delimiter
	}

	return Token{
		Kind: KindReference,
		Text: string(l.input[start:l.pos]),
		Pos:  pos,
	}, nil
}

// lexWord lexes identifiers and the keyword-like tokens built from them:
// booleans, Nil, and intrinsic markers (name!!).
func (l *Lexer) lexWord(pos Position) (Token, error) {
	name, err := l.lexIdentifier()
	if err != nil {
		return Token{Kind: KindInvalid, Pos: pos}, err
	}

	if l.peek() == '!' && l.peekAt(1) == '!' {
		l.advance()
		l.advance()

		return Token{Kind: KindIntrinsic, Text: name, Pos: pos}, nil
	}

	switch name {
	case "True", "true":
		return Token{Kind: KindBoolean, Text: "true", Pos: pos}, nil
	case "False", "false":
		return Token{Kind: KindBoolean, Text: "false", Pos: pos}, nil
	case "Nil":
		return Token{Kind: KindNil, Text: name, Pos: pos}, nil
	}

	return Token{Kind: KindIdentifier, Text: name, Pos: pos}, nil
}

// lexIdentifier lexes an identifier: a letter or underscore followed by
// letters, digits, and underscores.
func (l *Lexer) lexIdentifier() (string, error) {
	start := l.pos

	if !isIdentifierStart(l.peek()) {
		return "", ErrLex.WithPosition(l.position()).
			With(slog.String("expected", "identifier"))
	}

	l.advance()

	for !l.eof() && isIdentifierContinue(l.peek()) {
		l.advance()
	}

	return string(l.input[start:l.pos]), nil
}

// Helper methods

func (l *Lexer) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(l.input[l.pos:])

	return r
}

// peekAt returns the rune n bytes ahead of the current position.
// Lookahead is only ever used on ASCII delimiters, so byte offsets are safe.
func (l *Lexer) peekAt(n int) rune {
	if l.pos+n >= len(l.input) {
		return 0
	}

	r, _ := utf8.DecodeRune(l.input[l.pos+n:])

	return r
}

func (l *Lexer) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRune(l.input[l.pos:])

	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.eof() {
		ch := l.peek()

		if unicode.IsSpace(ch) {
			l.advance()

			continue
		}

		if ch == '#' {
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}

			continue
		}

		break
	}
}

// Character classification

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isBinaryDigit(r rune) bool { return r == '0' || r == '1' }

func isHexDigit(r rune) bool {
	return isDigit(r) ||
		(r >= 'a' && r <= 'f') ||
		(r >= 'A' && r <= 'F')
}

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentifierContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
