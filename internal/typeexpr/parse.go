package typeexpr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/recgen/internal/ir"
)

var primitives = map[string]ir.TypeExpr{
	"string":  ir.Primitive{Kind: ir.KindString},
	"int":     ir.Primitive{Kind: ir.KindInt},
	"integer": ir.Primitive{Kind: ir.KindInt},
	"float":   ir.Primitive{Kind: ir.KindFloat},
	"number":  ir.Primitive{Kind: ir.KindFloat},
	"bool":    ir.Primitive{Kind: ir.KindBool},
	"boolean": ir.Primitive{Kind: ir.KindBool},
	"any":     ir.Primitive{Kind: ir.KindAny},
	"unknown": ir.Primitive{Kind: ir.KindAny},

	"Date":      ir.Special{Kind: ir.KindTimestamp},
	"Timestamp": ir.Special{Kind: ir.KindTimestamp},
	"URI":       ir.Special{Kind: ir.KindURI},
	"URL":       ir.Special{Kind: ir.KindURI},
	"Bytes":     ir.Special{Kind: ir.KindBytes},
	"Binary":    ir.Special{Kind: ir.KindBytes},
	"Buffer":    ir.Special{Kind: ir.KindBytes},
}

type containerKind int

const (
	containerArray containerKind = iota + 1
	containerSet
	containerMap
)

var containers = map[string]containerKind{
	"Array":         containerArray,
	"ReadonlyArray": containerArray,
	"List":          containerArray,
	"Set":           containerSet,
	"ReadonlySet":   containerSet,
	"ImmutableSet":  containerSet,
	"Map":           containerMap,
	"ReadonlyMap":   containerMap,
	"ImmutableMap":  containerMap,
}

// canonicalAlias is the alias recorded when the schema uses the defining
// spelling, which displays without an alias.
var canonicalAlias = map[string]bool{"Array": true, "Set": true, "Map": true}

// Parse parses a type expression.
func Parse(src string) (ir.TypeExpr, error) {
	p := &parser{lex: lexer{src: src}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	t, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %s after type", p.tok)
	}
	if _, ok := t.(nullMarker); ok {
		return nil, p.errorf("null must be combined with another type")
	}
	return t, nil
}

// MustParse is like Parse but panics on error. Use for constants in tests.
func MustParse(src string) ir.TypeExpr {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

// nullMarker stands for a bare null member while a union is being parsed.
type nullMarker struct{ ir.Primitive }

type parser struct {
	lex lexer
	tok token
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Input: p.lex.src, Offset: p.tok.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) isPunct(s string) bool {
	return p.tok.kind == tokPunct && p.tok.text == s
}

func (p *parser) expect(s string) error {
	if !p.isPunct(s) {
		return p.errorf("expected %q, found %s", s, p.tok)
	}
	return p.advance()
}

func (p *parser) parseUnion() (ir.TypeExpr, error) {
	// Leading '|' is allowed, as in multi-line union declarations.
	if p.isPunct("|") {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	var members []ir.TypeExpr
	nullable := false
	for {
		t, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		switch m := t.(type) {
		case nullMarker:
			nullable = true
		case ir.Nullable:
			nullable = true
			members = appendMember(members, m.Inner)
		default:
			members = appendMember(members, m)
		}
		if !p.isPunct("|") {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	var t ir.TypeExpr
	switch len(members) {
	case 0:
		return nullMarker{}, nil
	case 1:
		t = members[0]
	default:
		t = ir.Union{Members: members}
	}
	if nullable {
		return ir.Nullable{Inner: t}, nil
	}
	return t, nil
}

// appendMember flattens nested unions.
func appendMember(members []ir.TypeExpr, t ir.TypeExpr) []ir.TypeExpr {
	if u, ok := t.(ir.Union); ok {
		return append(members, u.Members...)
	}
	return append(members, t)
}

func (p *parser) parsePostfix() (ir.TypeExpr, error) {
	t, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isPunct("[]"):
			if _, ok := t.(nullMarker); ok {
				return nil, p.errorf("null[] is not a type")
			}
			t = ir.ArrayOf{Elem: t}
		case p.isPunct("?"):
			switch t.(type) {
			case nullMarker, ir.Nullable:
			default:
				t = ir.Nullable{Inner: t}
			}
		default:
			return t, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parsePrimary() (ir.TypeExpr, error) {
	tok := p.tok
	switch tok.kind {
	case tokString:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ir.Literal{Value: tok.text}, nil
	case tokNumber:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return parseNumber(tok)
	case tokIdent:
		return p.parseNamed()
	case tokPunct:
		switch tok.text {
		case "(":
			if err := p.advance(); err != nil {
				return nil, err
			}
			t, err := p.parseUnion()
			if err != nil {
				return nil, err
			}
			return t, p.expect(")")
		case "{":
			return p.parseInline()
		}
	}
	return nil, p.errorf("expected a type, found %s", tok)
}

func parseNumber(tok token) (ir.TypeExpr, error) {
	text := strings.ReplaceAll(tok.text, "_", "")
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return ir.Literal{Value: n}, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, &SyntaxError{Input: tok.text, Offset: tok.pos, Message: "invalid number literal"}
	}
	return ir.Literal{Value: f}, nil
}

func (p *parser) parseNamed() (ir.TypeExpr, error) {
	name := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	switch name {
	case "null", "undefined":
		return nullMarker{}, nil
	case "true":
		return ir.Literal{Value: true}, nil
	case "false":
		return ir.Literal{Value: false}, nil
	}

	var args []ir.TypeExpr
	if p.isPunct("<") {
		var err error
		if args, err = p.parseArgs(); err != nil {
			return nil, err
		}
	}

	if kind, ok := containers[name]; ok {
		return containerOf(name, kind, args, p)
	}
	if name == "Brand" {
		return brandOf(args, p)
	}
	if prim, ok := primitives[name]; ok {
		if len(args) > 0 {
			return nil, p.errorf("%s takes no type arguments", name)
		}
		return prim, nil
	}
	return ir.Ref{Name: name, Args: args}, nil
}

func (p *parser) parseArgs() ([]ir.TypeExpr, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var args []ir.TypeExpr
	for {
		t, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		if _, ok := t.(nullMarker); ok {
			return nil, p.errorf("null is not a type argument")
		}
		args = append(args, t)
		if !p.isPunct(",") {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return args, p.expect(">")
}

func containerOf(name string, kind containerKind, args []ir.TypeExpr, p *parser) (ir.TypeExpr, error) {
	alias := name
	if canonicalAlias[name] {
		alias = ""
	}
	switch kind {
	case containerArray:
		if len(args) != 1 {
			return nil, p.errorf("%s takes 1 type argument, got %d", name, len(args))
		}
		if alias == "" {
			alias = "Array"
		}
		return ir.ArrayOf{Elem: args[0], Alias: alias}, nil
	case containerSet:
		if len(args) != 1 {
			return nil, p.errorf("%s takes 1 type argument, got %d", name, len(args))
		}
		return ir.SetOf{Elem: args[0], Alias: alias}, nil
	default:
		if len(args) != 2 {
			return nil, p.errorf("%s takes 2 type arguments, got %d", name, len(args))
		}
		return ir.MapOf{Key: args[0], Value: args[1], Alias: alias}, nil
	}
}

func brandOf(args []ir.TypeExpr, p *parser) (ir.TypeExpr, error) {
	if len(args) != 2 {
		return nil, p.errorf("Brand takes a base type and a brand name")
	}
	lit, ok := args[1].(ir.Literal)
	brand, isString := lit.Value.(string)
	if !ok || !isString || brand == "" {
		return nil, p.errorf("Brand name must be a non-empty string literal")
	}
	switch base := args[0].(type) {
	case ir.Primitive:
		if base.Kind == ir.KindAny {
			return nil, p.errorf("cannot brand any")
		}
	default:
		return nil, p.errorf("Brand base must be a primitive type, got %s", base)
	}
	return ir.Branded{Base: args[0], Brand: brand}, nil
}

func (p *parser) parseInline() (ir.TypeExpr, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var fields []ir.FieldDecl
	for !p.isPunct("}") {
		var key string
		switch p.tok.kind {
		case tokIdent, tokString:
			key = p.tok.text
		default:
			return nil, p.errorf("expected field name, found %s", p.tok)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		optional := strings.HasSuffix(key, "?")
		if p.isPunct("?") {
			optional = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		t, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		if _, ok := t.(nullMarker); ok {
			return nil, p.errorf("field %s: null must be combined with another type", key)
		}
		fields = append(fields, ir.FieldDecl{
			Key:      strings.TrimSuffix(key, "?"),
			Type:     t,
			Optional: optional,
		})
		if p.isPunct(",") || p.isPunct(";") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, p.errorf("inline record has no fields")
	}
	return ir.InlineRecord{Fields: fields}, nil
}
