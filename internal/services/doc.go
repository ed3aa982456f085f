// Package services defines shared utilities consumed by the generation
// pipeline and the HTTP layer.
//
// Key responsibilities:
//   - Context helpers that stamp request, plan, and job identifiers for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent HTTP statuses and job outcomes.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across components.
package services
