package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/vtc/log"
)

// Option configures a parse operation.
type Option func(*parser)

// WithLogger attaches a logger to the parser. The zero logger discards all
// output.
func WithLogger(logger log.Logger) Option {
	return func(p *parser) { p.logger = logger }
}

// ParseReader parses a Document from an io.Reader.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrRead.Wrap(err)
	}

	return ParseString(ctx, string(data), opts...)
}

// ParseString parses a Document from a string.
func ParseString(
	ctx context.Context,
	s string,
	opts ...Option,
) (*Document, error) {
	p := &parser{lexer: NewLexer(s)}

	for _, opt := range opts {
		opt(p)
	}

	err := p.next()
	if err != nil {
		return nil, err
	}

	doc, err := p.parseDocument()
	if err != nil {
		return nil, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.Int("namespace_count", len(doc.Namespaces)))

	return doc, nil
}

// parser holds the parser state: the token source and one token of
// lookahead.
type parser struct {
	lexer  *Lexer
	tok    Token
	logger log.Logger
}

// next advances the lookahead token.
func (p *parser) next() error {
	tok, err := p.lexer.Next()
	if err != nil {
		return err
	}

	p.tok = tok

	return nil
}

// parseDocument parses the entire input as a sequence of namespaces.
func (p *parser) parseDocument() (*Document, error) {
	doc := new(Document)
	doc.Namespaces = make([]*Namespace, 0)

	for p.tok.Kind != KindEOF {
		if p.tok.Kind != KindNamespace {
			return nil, ErrParse.WithPosition(p.tok.Pos).
				With(
					slog.String("expected", "@namespace:"),
					slog.String("found", p.tok.Kind.String()),
				)
		}

		ns, err := p.parseNamespace()
		if err != nil {
			return nil, err
		}

		doc.Namespaces = append(doc.Namespaces, ns)
	}

	return doc, nil
}

// parseNamespace parses a namespace header and its variable bindings.
// Rebinding a name within one namespace replaces the earlier value in
// place, so the last assignment wins and the binding keeps its original
// enumeration position.
func (p *parser) parseNamespace() (*Namespace, error) {
	ns := &Namespace{
		Name:      p.tok.Text,
		Variables: make([]*Variable, 0),
		Pos:       p.tok.Pos,
	}

	err := p.next()
	if err != nil {
		return nil, err
	}

	for p.tok.Kind == KindVariable {
		v, err := p.parseVariable()
		if err != nil {
			return nil, err
		}

		if prev, ok := ns.Lookup(v.Name); ok {
			prev.Value = v.Value

			continue
		}

		ns.Variables = append(ns.Variables, v)
	}

	return ns, nil
}

// parseVariable parses: '$' name ':=' value.
func (p *parser) parseVariable() (*Variable, error) {
	v := &Variable{
		Name: p.tok.Text,
		Pos:  p.tok.Pos,
	}

	err := p.next()
	if err != nil {
		return nil, err
	}

	if p.tok.Kind != KindAssign {
		return nil, ErrParse.WithPosition(p.tok.Pos).
			With(
				slog.String("expected", ":="),
				slog.String("variable", v.Name),
			)
	}

	err = p.next()
	if err != nil {
		return nil, err
	}

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	v.Value = value

	return v, nil
}

// parseValue parses a single value. The lookahead token must begin a value.
func (p *parser) parseValue() (*Value, error) {
	if p.tok.Kind == KindOpenBracket {
		return p.parseList()
	}

	return p.parseScalar()
}

// parseScalar converts a non-list token into a value and advances.
// Intrinsic markers are only meaningful as the first element of a list, so
// they are rejected here and accepted explicitly by parseList.
func (p *parser) parseScalar() (*Value, error) {
	v, err := p.scalarValue(false)
	if err != nil {
		return nil, err
	}

	err = p.next()
	if err != nil {
		return nil, err
	}

	return v, nil
}

// radixLiteral reconstructs a radix literal from its token text, keeping the
// sign ahead of the base prefix.
func radixLiteral(prefix, text string) string {
	if strings.HasPrefix(text, "-") {
		return "-" + prefix + text[1:]
	}

	return prefix + text
}

// scalarValue converts the lookahead token into a value without advancing.
func (p *parser) scalarValue(inList bool) (*Value, error) {
	tok := p.tok

	switch tok.Kind {
	case KindString:
		return NewString(tok.Text), nil

	case KindInteger:
		i, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, ErrParse.WithPosition(tok.Pos).Wrap(err).
				With(slog.String("literal", tok.Text))
		}

		return NewInteger(i), nil

	case KindFloat:
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, ErrParse.WithPosition(tok.Pos).Wrap(err).
				With(slog.String("literal", tok.Text))
		}

		return NewFloat(f), nil

	case KindBinary:
		i, err := strconv.ParseInt(tok.Text, 2, 64)
		if err != nil {
			return nil, ErrParse.WithPosition(tok.Pos).Wrap(err).
				With(slog.String("literal", radixLiteral("0b", tok.Text)))
		}

		return NewIntegerFormat(i, FormatBinary), nil

	case KindHexadecimal:
		i, err := strconv.ParseInt(tok.Text, 16, 64)
		if err != nil {
			return nil, ErrParse.WithPosition(tok.Pos).Wrap(err).
				With(slog.String("literal", radixLiteral("0x", tok.Text)))
		}

		return NewIntegerFormat(i, FormatHexadecimal), nil

	case KindBoolean:
		return NewBoolean(tok.Text == "true"), nil

	case KindNil:
		return NewNil(), nil

	case KindReference:
		ref, err := parseReferenceText(tok.Text, tok.Pos)
		if err != nil {
			return nil, err
		}

		return NewReference(ref), nil

	case KindIntrinsic:
		if !inList {
			return nil, ErrParse.WithPosition(tok.Pos).
				With(
					slog.String("intrinsic", tok.Text),
					slog.String("error", "intrinsic call outside list"),
				)
		}

		return NewIntrinsic(tok.Text), nil

	default:
		return nil, ErrParse.WithPosition(tok.Pos).
			With(
				slog.String("expected", "value"),
				slog.String("found", tok.Kind.String()),
			)
	}
}

// listFrame is one level of list nesting during iterative list parsing.
type listFrame struct {
	items      []*Value
	expectItem bool
}

// parseList parses a bracketed list using an explicit work stack, so nesting
// depth is bounded by memory rather than goroutine stack. The lookahead
// token must be the opening bracket.
func (p *parser) parseList() (*Value, error) {
	stack := []*listFrame{{expectItem: true}}

	err := p.next() // consume '['
	if err != nil {
		return nil, err
	}

	for {
		top := stack[len(stack)-1]

		switch p.tok.Kind {
		case KindCloseBracket:
			if top.expectItem && len(top.items) > 0 {
				return nil, ErrParse.WithPosition(p.tok.Pos).
					With(slog.String("error", "trailing comma before ']'"))
			}

			err = p.next()
			if err != nil {
				return nil, err
			}

			done := NewList(top.items...)

			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return done, nil
			}

			parent := stack[len(stack)-1]
			parent.items = append(parent.items, done)
			parent.expectItem = false

		case KindComma:
			if top.expectItem {
				return nil, ErrParse.WithPosition(p.tok.Pos).
					With(slog.String("expected", "value before ','"))
			}

			top.expectItem = true

			err = p.next()
			if err != nil {
				return nil, err
			}

		case KindOpenBracket:
			if !top.expectItem {
				return nil, ErrParse.WithPosition(p.tok.Pos).
					With(slog.String("expected", "',' or ']'"))
			}

			stack = append(stack, &listFrame{expectItem: true})

			err = p.next()
			if err != nil {
				return nil, err
			}

		case KindEOF:
			return nil, ErrParse.WithPosition(p.tok.Pos).
				With(slog.String("expected", "]"))

		default:
			if !top.expectItem {
				return nil, ErrParse.WithPosition(p.tok.Pos).
					With(slog.String("expected", "',' or ']'"))
			}

			item, err := p.scalarValue(len(top.items) == 0)
			if err != nil {
				return nil, err
			}

			top.items = append(top.items, item)
			top.expectItem = false

			err = p.next()
			if err != nil {
				return nil, err
			}
		}
	}
}

// ParseReference parses reference syntax such as "&server.host->(0)" or
// "%items->[key]". A missing sigil is treated as external, so callers can
// accept bare "namespace.variable" paths.
func ParseReference(text string) (*Reference, error) {
	if !strings.HasPrefix(text, "&") && !strings.HasPrefix(text, "%") {
		text = "&" + text
	}

	return parseReferenceText(text, Position{Line: 1, Column: 1})
}

// parseReferenceText decomposes a raw reference lexeme into its parts:
// sigil, optional namespace, variable name, and accessor chain.
func parseReferenceText(text string, pos Position) (*Reference, error) {
	ref := new(Reference)

	switch {
	case strings.HasPrefix(text, "&"):
		ref.Scope = RefExternal
	case strings.HasPrefix(text, "%"):
		ref.Scope = RefLocal
	default:
		return nil, ErrParse.WithPosition(pos).
			With(slog.String("reference", text))
	}

	rest := text[1:]

	// Split the dotted path from the accessor chain.
	path := rest
	if i := strings.Index(rest, "->"); i >= 0 {
		path = rest[:i]
		rest = rest[i:]
	} else {
		rest = ""
	}

	if ns, name, ok := strings.Cut(path, "."); ok {
		ref.Namespace = ns
		ref.Name = name
	} else {
		ref.Name = path
	}

	if ref.Name == "" || strings.Contains(ref.Name, ".") {
		return nil, ErrParse.WithPosition(pos).
			With(
				slog.String("reference", text),
				slog.String("error", "invalid reference path"),
			)
	}

	for rest != "" {
		var err error

		rest, err = parseAccessorText(ref, rest, text, pos)
		if err != nil {
			return nil, err
		}
	}

	return ref, nil
}

// parseAccessorText consumes one "->(...)" or "->[...]" accessor from rest.
func parseAccessorText(
	ref *Reference,
	rest, text string,
	pos Position,
) (string, error) {
	invalid := ErrParse.WithPosition(pos).
		With(slog.String("reference", text))

	if !strings.HasPrefix(rest, "->") {
		return "", invalid
	}

	rest = rest[2:]

	switch {
	case strings.HasPrefix(rest, "("):
		body, remainder, ok := strings.Cut(rest[1:], ")")
		if !ok {
			return "", invalid
		}

		if start, end, isRange := strings.Cut(body, ".."); isRange {
			a, errA := strconv.ParseInt(strings.TrimSpace(start), 10, 64)
			b, errB := strconv.ParseInt(strings.TrimSpace(end), 10, 64)

			if errA != nil || errB != nil {
				return "", invalid
			}

			ref.Accessors = append(ref.Accessors, Accessor{
				Kind:  AccessRange,
				Start: a,
				End:   b,
			})

			return remainder, nil
		}

		i, err := strconv.ParseInt(strings.TrimSpace(body), 10, 64)
		if err != nil {
			return "", invalid
		}

		ref.Accessors = append(ref.Accessors, Accessor{
			Kind:  AccessIndex,
			Index: i,
		})

		return remainder, nil

	case strings.HasPrefix(rest, "["):
		body, remainder, ok := strings.Cut(rest[1:], "]")
		if !ok || body == "" {
			return "", invalid
		}

		ref.Accessors = append(ref.Accessors, Accessor{
			Kind: AccessKey,
			Key:  body,
		})

		return remainder, nil

	default:
		return "", invalid
	}
}
