package compiler

import (
	"fmt"

	"github.com/roach88/recgen/internal/ir"
)

// Context is the declared-name registry of one compilation unit. Every
// declaration is registered before any is compiled, so references may
// point forward. Inline record literals register synthesized records
// here while their parent compiles.
type Context struct {
	identityPrefix string
	decls          map[string]*ir.RecordDecl
	synthesized    map[string]bool
	pending        []*ir.RecordDecl
}

// NewContext returns an empty registry. Records without an explicit
// identity get "<identityPrefix>.<Name>".
func NewContext(identityPrefix string) *Context {
	return &Context{
		identityPrefix: identityPrefix,
		decls:          make(map[string]*ir.RecordDecl),
		synthesized:    make(map[string]bool),
	}
}

// Declare registers a record declaration.
func (c *Context) Declare(d *ir.RecordDecl) error {
	if !identRe.MatchString(d.Name) {
		return &CompileError{
			Record:  d.Name,
			Code:    ErrInvalidFieldKey,
			Message: fmt.Sprintf("record name %q is not an identifier", d.Name),
			Pos:     d.Pos,
		}
	}
	if prev, dup := c.decls[d.Name]; dup {
		return &CompileError{
			Record:  d.Name,
			Code:    ErrDuplicateRecord,
			Message: fmt.Sprintf("record declared twice (first at %s)", prev.Pos),
			Pos:     d.Pos,
		}
	}
	c.decls[d.Name] = d
	return nil
}

// Record looks up a declared or synthesized record by name.
func (c *Context) Record(name string) (*ir.RecordDecl, bool) {
	d, ok := c.decls[name]
	return d, ok
}

// Synthesized reports whether name was created for an inline literal.
func (c *Context) Synthesized(name string) bool { return c.synthesized[name] }

// Identity returns the wire identity of a declaration.
func (c *Context) Identity(d *ir.RecordDecl) string {
	if d.Identity != "" {
		return d.Identity
	}
	if c.identityPrefix == "" {
		return d.Name
	}
	return c.identityPrefix + "." + d.Name
}

// synthesize registers the record for an inline literal.
func (c *Context) synthesize(name string, lit ir.InlineRecord, pos ir.Pos) (*ir.RecordDecl, error) {
	d := &ir.RecordDecl{Name: name, Fields: lit.Fields, Pos: pos}
	if err := c.Declare(d); err != nil {
		return nil, err
	}
	c.synthesized[name] = true
	c.pending = append(c.pending, d)
	return d, nil
}

// takePending returns the synthesized records not compiled yet.
func (c *Context) takePending() []*ir.RecordDecl {
	p := c.pending
	c.pending = nil
	return p
}

// scope resolves names inside one declaration: its type parameters
// shadow record names.
type scope struct {
	ctx  *Context
	decl *ir.RecordDecl
}

func (s scope) param(name string) (ir.ParamDecl, bool) { return s.decl.Param(name) }

func (s scope) record(name string) (*ir.RecordDecl, bool) { return s.ctx.Record(name) }
