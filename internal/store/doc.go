// Package store is the SQLite build cache behind incremental compiles.
//
// The cache holds:
//   - Builds: one row per compile run, identified by a UUIDv7 and ordered
//     by a logical seq
//   - Outputs: generated source keyed by output hash, which covers the
//     declaration hash, resolved identity, target package and compiler
//     version
//   - Build outputs: which outputs a build produced and whether it reused
//     them from an earlier build
//
// Outputs are content-addressed, so writing one twice is a no-op. All
// listing queries order by seq or by name with COLLATE BINARY so results
// are stable across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
