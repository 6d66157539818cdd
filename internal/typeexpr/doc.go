// Package typeexpr parses field type expressions into ir.TypeExpr trees.
//
// Grammar:
//
//	union   := postfix ('|' postfix)*
//	postfix := primary ('[]' | '?')*
//	primary := '(' union ')' | '{' fields '}' | literal | 'null'
//	         | ident ['<' union (',' union)* '>']
//	fields  := (key ':' union [',' | ';'])*
//	key     := ident ['?'] | string
//
// Container aliases (ReadonlyArray, ImmutableSet, ReadonlyMap, ...) map to
// the same tree node; the spelling is kept for display only. A null member
// of a union becomes a Nullable wrapper around the remaining members.
package typeexpr
