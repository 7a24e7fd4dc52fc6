// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - PDFExtractor: Pulls page text out of PDF files
//   - WebFetcher: Fetches a web page and returns its visible text
//   - BlobStore: Durable object storage for indexes, transcripts and uploads
//   - ConfigStore: Application configuration
//   - PromptStore: User-editable prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Without it, indexes cannot be built or queried.
//   - LLMService: Without it, answering, comparison and question generation are disabled.
//   - ItemStore: Without it, generated interview questions are not saved.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
