// Package harness runs record scenarios against compiled schemas.
//
// A scenario compiles its schema files, loads the records into the
// interpreter and executes a list of steps that build, decode, mutate and
// encode instances. Each step lands in a trace; assertions then compare
// named values, and the trace can be snapshotted as a golden file.
//
// # Scenario Format
//
//	name: pair_lifecycle
//	description: "Pair construction and mutation"
//	schemas:
//	  - ../schemas/pair.cue
//	steps:
//	  - op: new
//	    type: Pair
//	    input: { first: { value: "a" }, second: ["x"] }
//	    as: p
//	  - op: add
//	    target: p
//	    field: second
//	    args: ["x"]
//	    as: same
//	    expect: { same: p }
//	  - op: set
//	    target: p
//	    input: { first: 3 }
//	    expect: { error: invalid_type, field: first }
//	assertions:
//	  - type: equal
//	    left: p
//	    right: same
//
// Schema paths are relative to the scenario file. Step results are bound
// to names with "as"; later steps refer to them with "target".
//
// # Step Operations
//
//   - new, decode, decode_json: build an instance of "type" from "input"
//   - set (input is a field map), unset, with_child
//   - list ops: push, pop, shift, unshift, splice, reverse, sort, fill,
//     copy_within
//   - set ops: add, add_all, delete, delete_all, clear
//   - map ops: set_entry, delete_entry, merge
//   - encode with form plain, tagged or compact
//
// # Assertion Types
//
//   - equal / not_equal: structural equality of two named values
//   - same_instance: two names hold the identical instance
//   - field_value: a field of a named value encodes to the given value
//
// Runs are deterministic: no clocks or random ids are involved, so the
// same scenario produces byte-identical traces.
package harness
