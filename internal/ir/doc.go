// Package ir holds the intermediate representation shared by the recgen
// compiler stages: parsed type expressions, record declarations and the
// canonical JSON encoding used for content hashes.
//
// ir imports nothing internal. The loader produces ir values, the parser in
// typeexpr produces TypeExpr trees, and the compiler consumes both.
//
// Key constraints:
//   - TypeExpr trees are immutable once parsed
//   - Declaration hashes use RFC 8785 canonical JSON with NFC strings
//   - Floats never enter canonical JSON; float literals hash as their text
package ir
