// Package wire implements the symbolic-expression wire codec used for both
// the client socket protocol and the project configuration file. Messages
// are self-delimited nested trees of a small set of atom types: integers,
// escaped strings, :keyword identifiers, bare symbols, nil, and t.
package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// Keyword is a `:`-prefixed identifier, e.g. the :swank-rpc tag on a request.
// The stored value excludes the leading colon.
type Keyword string

// Symbol is a bare (unquoted, non-keyword) identifier.
type Symbol string

// List is an ordered sequence of values — the only composite shape on the
// wire. Requests, replies, and events are all Lists.
type List []interface{}

// T is the wire boolean-true atom. Wire nil is represented by Go nil.
type T struct{}

// Get returns the i'th element of the list, or nil if out of range.
func (l List) Get(i int) interface{} {
	if i < 0 || i >= len(l) {
		return nil
	}
	return l[i]
}

// Keyword returns l[i] as a Keyword, or "" if it isn't one.
func (l List) Keyword(i int) (Keyword, bool) {
	kw, ok := l.Get(i).(Keyword)
	return kw, ok
}

// Int returns l[i] as an int64, or (0, false) if it isn't a number.
func (l List) Int(i int) (int64, bool) {
	switch v := l.Get(i).(type) {
	case int64:
		return v, true
	default:
		return 0, false
	}
}

// Str returns l[i] as a string, or ("", false) if it isn't one.
func (l List) Str(i int) (string, bool) {
	s, ok := l.Get(i).(string)
	return s, ok
}

// KeywordMap reads a flat `:key val :key val ...` list into a map keyed by
// keyword name. Used for both RPC argument plists and the config file.
func KeywordMap(l List) map[string]interface{} {
	m := make(map[string]interface{}, len(l)/2)
	for i := 0; i+1 < len(l); i += 2 {
		kw, ok := l[i].(Keyword)
		if !ok {
			continue
		}
		m[string(kw)] = l[i+1]
	}
	return m
}

// Encode renders a Value to its wire text form.
func Encode(v interface{}) string {
	var b strings.Builder
	encode(&b, v)
	return b.String()
}

func encode(b *strings.Builder, v interface{}) {
	switch t := v.(type) {
	case nil:
		b.WriteString("nil")
	case T:
		b.WriteString("t")
	case bool:
		if t {
			b.WriteString("t")
		} else {
			b.WriteString("nil")
		}
	case int:
		b.WriteString(strconv.Itoa(t))
	case int64:
		b.WriteString(strconv.FormatInt(t, 10))
	case string:
		b.WriteString(encodeString(t))
	case Keyword:
		b.WriteByte(':')
		b.WriteString(string(t))
	case Symbol:
		b.WriteString(string(t))
	case List:
		encodeList(b, t)
	case []interface{}:
		encodeList(b, List(t))
	default:
		// Best effort: render via fmt so unexpected types don't panic the codec.
		b.WriteString(encodeString(fmt.Sprintf("%v", t)))
	}
}

func encodeList(b *strings.Builder, l List) {
	b.WriteByte('(')
	for i, e := range l {
		if i > 0 {
			b.WriteByte(' ')
		}
		encode(b, e)
	}
	b.WriteByte(')')
}

func encodeString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Parse reads exactly one Value from s, returning an error if s contains
// trailing garbage beyond trailing whitespace.
func Parse(s string) (interface{}, error) {
	p := &parser{src: s}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("wire: trailing data at offset %d", p.pos)
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.pos++
			continue
		}
		break
	}
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *parser) parseValue() (interface{}, error) {
	c, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("wire: unexpected end of input")
	}
	switch {
	case c == '(':
		return p.parseList()
	case c == '"':
		return p.parseString()
	case c == ':':
		return p.parseKeyword()
	case c == '-' || (c >= '0' && c <= '9'):
		if v, ok := p.tryParseNumber(); ok {
			return v, nil
		}
		return p.parseSymbol()
	default:
		return p.parseSymbol()
	}
}

func (p *parser) parseList() (interface{}, error) {
	p.pos++ // consume '('
	var l List
	for {
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, fmt.Errorf("wire: unterminated list")
		}
		if c == ')' {
			p.pos++
			return l, nil
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		l = append(l, v)
	}
}

func (p *parser) parseString() (interface{}, error) {
	p.pos++ // consume opening quote
	var b strings.Builder
	for {
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("wire: unterminated string")
		}
		c := p.src[p.pos]
		if c == '"' {
			p.pos++
			return b.String(), nil
		}
		if c == '\\' && p.pos+1 < len(p.src) {
			switch p.src[p.pos+1] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			default:
				b.WriteByte(p.src[p.pos+1])
			}
			p.pos += 2
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
}

func (p *parser) parseKeyword() (interface{}, error) {
	p.pos++ // consume ':'
	start := p.pos
	for p.pos < len(p.src) && !isDelim(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return nil, fmt.Errorf("wire: empty keyword at offset %d", start)
	}
	return Keyword(p.src[start:p.pos]), nil
}

func (p *parser) tryParseNumber() (interface{}, bool) {
	start := p.pos
	i := p.pos
	if i < len(p.src) && p.src[i] == '-' {
		i++
	}
	digitsStart := i
	for i < len(p.src) && p.src[i] >= '0' && p.src[i] <= '9' {
		i++
	}
	if i == digitsStart {
		return nil, false
	}
	if i < len(p.src) && !isDelim(p.src[i]) {
		// Not purely numeric (e.g. a symbol like "3x") — fall back to symbol parsing.
		return nil, false
	}
	n, err := strconv.ParseInt(p.src[start:i], 10, 64)
	if err != nil {
		return nil, false
	}
	p.pos = i
	return n, true
}

func (p *parser) parseSymbol() (interface{}, error) {
	start := p.pos
	for p.pos < len(p.src) && !isDelim(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return nil, fmt.Errorf("wire: empty symbol at offset %d", start)
	}
	s := p.src[start:p.pos]
	switch s {
	case "nil":
		return nil, nil
	case "t":
		return T{}, nil
	default:
		return Symbol(s), nil
	}
}

func isDelim(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')' || c == '"'
}
