package typeexpr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return strconv.Quote(t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += size
	}
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: start}, nil
	}

	c := l.src[l.pos]
	switch {
	case c == '"' || c == '\'':
		return l.lexString(c)
	case c == '-' || (c >= '0' && c <= '9'):
		return l.lexNumber()
	case c == '_' || c == '$' || unicode.IsLetter(rune(c)):
		for l.pos < len(l.src) {
			c := l.src[l.pos]
			if c != '_' && c != '$' && c != '.' && !unicode.IsLetter(rune(c)) && !unicode.IsDigit(rune(c)) {
				break
			}
			l.pos++
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}, nil
	case c == '[' && strings.HasPrefix(l.src[l.pos:], "[]"):
		l.pos += 2
		return token{kind: tokPunct, text: "[]", pos: start}, nil
	case strings.ContainsRune("|?<>(){},:;", rune(c)):
		l.pos++
		return token{kind: tokPunct, text: string(c), pos: start}, nil
	}
	return token{}, &SyntaxError{Input: l.src, Offset: start, Message: fmt.Sprintf("unexpected character %q", c)}
}

func (l *lexer) lexString(quote byte) (token, error) {
	start := l.pos
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case quote:
			l.pos++
			return token{kind: tokString, text: sb.String(), pos: start}, nil
		case '\\':
			if l.pos+1 >= len(l.src) {
				return token{}, &SyntaxError{Input: l.src, Offset: start, Message: "unterminated string literal"}
			}
			l.pos++
			switch e := l.src[l.pos]; e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(e)
			}
			l.pos++
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}
	return token{}, &SyntaxError{Input: l.src, Offset: start, Message: "unterminated string literal"}
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	digits := 0
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '_' {
			l.pos++
			digits++
			continue
		}
		if (c == '+' || c == '-') && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E') {
			l.pos++
			continue
		}
		break
	}
	if digits == 0 {
		return token{}, &SyntaxError{Input: l.src, Offset: start, Message: "expected digits after '-'"}
	}
	return token{kind: tokNumber, text: l.src[start:l.pos], pos: start}, nil
}
