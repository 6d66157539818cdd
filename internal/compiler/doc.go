// Package compiler turns record declarations into record models.
//
// Declarations are loaded from CUE (LoadCUE, LoadRecords) or YAML
// (LoadYAML) into ir.RecordDecl values. Compile then runs, per record:
//
//   - the descriptor builder, which parses field keys, lifts inline record
//     literals into synthesized records and classifies each type
//     expression into a Shape;
//   - the predicate and normalization builders, which produce the Pred and
//     Norm trees validating and canonicalizing a field's input;
//   - the envelope and binding builders, which decide the compact wire form
//     and the Bind entry point of parameterized records.
//
// The resulting RecordModels are rendered to Go by package codegen and
// evaluated into live record.Types by package interp. Both walk the same
// trees and call the same runtime helpers, so generated and interpreted
// types behave alike.
package compiler
