// Package domain defines the core business entities for drawsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DrawRecord: The canonical result for one draw date
//   - Schema: Prize categories, expected counts and amount keys
//   - Extraction: What one source contributes to a date
//   - RunSummary: Aggregate counters returned by every batch job
//
// Merging and completeness scoring are pure functions on Schema, so the
// same rules apply in the reconciler and inside store transactions.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
