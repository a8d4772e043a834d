package expression

import (
	"errors"
	"strings"
)

// Delimiters of the expression grammar.
const (
	EscapeChar   = '/'
	OrChar       = '|'
	OptionalChar = '?'
	ParamChar    = '#'
)

// ErrEmptyExpression is returned by Parse when the text holds no alternative.
var ErrEmptyExpression = errors.New("expression: empty expression")

// Alternative is one '|'-separated branch of an expression.
type Alternative struct {
	// Name is the unescaped component name.
	Name string
	// Params are the unescaped '#' parameters, in order.
	Params []string
	// Raw is the alternative exactly as written, escapes intact.
	Raw string
	// RawName is the escaped name segment of Raw.
	RawName string
	// Index is the position of the alternative in its expression.
	Index int
	// Sole is true when this is the only alternative of a non-optional
	// expression, so a failure here fails the whole expression.
	Sole bool
}

// Expression is a parsed dependency expression.
type Expression struct {
	Raw          string
	Alternatives []Alternative
	Optional     bool
}

// token is one character of an expression, paired with its escape marker.
type token struct {
	c       byte
	escaped bool
}

// tokenize pairs every '/' with the character that follows it. A trailing '/'
// with nothing after it stays a literal slash.
func tokenize(s string) []token {
	out := make([]token, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == EscapeChar && i+1 < len(s) {
			out = append(out, token{c: s[i+1], escaped: true})
			i++
			continue
		}
		out = append(out, token{c: s[i]})
	}
	return out
}

// split cuts tokens on every unescaped sep, dropping empty segments.
func split(tokens []token, sep byte) [][]token {
	var (
		out []token
		all [][]token
	)
	for _, t := range tokens {
		if t.c == sep && !t.escaped {
			if len(out) > 0 {
				all = append(all, out)
			}
			out = nil
			continue
		}
		out = append(out, t)
	}
	if len(out) > 0 {
		all = append(all, out)
	}
	return all
}

// source rebuilds the escaped text of tokens.
func source(tokens []token) string {
	var b strings.Builder
	for _, t := range tokens {
		if t.escaped {
			b.WriteByte(EscapeChar)
		}
		b.WriteByte(t.c)
	}
	return b.String()
}

// text returns the literal value of tokens. Only the grammar's delimiters are
// unescaped; any other escaped character keeps its slash.
func text(tokens []token) string {
	var b strings.Builder
	for _, t := range tokens {
		if t.escaped && !isDelimiter(t.c) {
			b.WriteByte(EscapeChar)
		}
		b.WriteByte(t.c)
	}
	return b.String()
}

func isDelimiter(c byte) bool {
	switch c {
	case EscapeChar, OrChar, OptionalChar, ParamChar:
		return true
	}
	return false
}

// Parse parses raw into its alternatives.
func Parse(raw string) (*Expression, error) {
	tokens := tokenize(raw)
	expr := &Expression{Raw: raw}
	if n := len(tokens); n > 0 && tokens[n-1].c == OptionalChar && !tokens[n-1].escaped {
		expr.Optional = true
		tokens = tokens[:n-1]
	}

	for _, alt := range split(tokens, OrChar) {
		segments := split(alt, ParamChar)
		if len(segments) == 0 {
			continue
		}
		a := Alternative{
			Name:    text(segments[0]),
			Raw:     source(alt),
			RawName: source(segments[0]),
			Index:   len(expr.Alternatives),
		}
		for _, p := range segments[1:] {
			a.Params = append(a.Params, text(p))
		}
		expr.Alternatives = append(expr.Alternatives, a)
	}
	if len(expr.Alternatives) == 0 {
		return nil, ErrEmptyExpression
	}
	if len(expr.Alternatives) == 1 && !expr.Optional {
		expr.Alternatives[0].Sole = true
	}
	return expr, nil
}

// MustParse is like Parse but panics on error.
func MustParse(raw string) *Expression {
	expr, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return expr
}

// Escape quotes every delimiter in s so that it parses back to the literal s.
func Escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if isDelimiter(s[i]) {
			b.WriteByte(EscapeChar)
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// String returns the source text of the expression.
func (e *Expression) String() string { return e.Raw }
