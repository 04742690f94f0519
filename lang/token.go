package lang

import "strconv"

// Kind identifies the syntactic class of a token.
type Kind int

const (
	KindInvalid Kind = iota
	KindNamespace
	KindVariable
	KindAssign
	KindOpenBracket
	KindCloseBracket
	KindComma
	KindString
	KindInteger
	KindFloat
	KindBinary
	KindHexadecimal
	KindBoolean
	KindNil
	KindReference
	KindIntrinsic
	KindIdentifier
	KindEOF
)

// String returns the lowercase name of the token kind.
func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindVariable:
		return "variable"
	case KindAssign:
		return "assign"
	case KindOpenBracket:
		return "open-bracket"
	case KindCloseBracket:
		return "close-bracket"
	case KindComma:
		return "comma"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBinary:
		return "binary"
	case KindHexadecimal:
		return "hexadecimal"
	case KindBoolean:
		return "boolean"
	case KindNil:
		return "nil"
	case KindReference:
		return "reference"
	case KindIntrinsic:
		return "intrinsic"
	case KindIdentifier:
		return "identifier"
	case KindEOF:
		return "eof"
	default:
		return "invalid"
	}
}

// Position locates a token within its source input.
// Offset is a byte offset; Line and Column are 1-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String formats the position as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Token is a single lexeme with its source position.
//
// Text holds the meaningful portion of the lexeme: the bare name for
// namespace, variable, and intrinsic markers; the decoded body for string
// literals; the digits (without base prefix or sign applied) for numeric
// literals; and the raw source text for references.
type Token struct {
	Text string
	Pos  Position
	Kind Kind
}
