// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - EmbeddingService: Text Embedder, text to fixed-length vector
//   - SimilarityIndex: persisted collection of (vector, chunk, metadata) entries
//   - IndexOpener: opens a SimilarityIndex by directory and collection name
//   - IndexLocker: single-writer guard for an index directory
//   - CatalogNormaliser: raw catalog to processed catalog and documents
//   - LLMService: Completion Service, prompt to generated text
//   - PostProcessor: chunking and chunk clean-up stages
//   - PromptStore: user-editable prompt templates
//   - ConfigStore: application configuration persistence
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
