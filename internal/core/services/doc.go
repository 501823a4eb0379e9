// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The reconciler runs one date through an ordered chain of stages and
// writes the merged record once. The job service wraps it in the batch
// orchestrators, and the scheduler runs those on intervals.
package services
