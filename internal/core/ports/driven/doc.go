// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DrawStore: Draw record persistence with merge-on-write
//   - BlobStore: Write-once document and OCR output storage
//   - ResultsAPI: Structured results API
//   - TextExtractor: Document text layer extraction
//   - SchedulerStore: Scheduled job state
//
// # Optional Interfaces
//
// These can be nil - the reconciler skips the stages they back:
//
//   - OfficialDocuments: Official result sheet download
//   - MirrorDocuments: Third-party mirror sheets
//   - ResultPages: Scraped HTML result pages
//   - Recognizer: Asynchronous OCR. Without it, scanned sheets yield no text.
//   - Metrics: Pipeline observations. NopMetrics is used when nil.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
