// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ChunkStore: Chunk metadata persistence (SQLite). Sole source of
//     truth for chunk content.
//   - VectorIndex: Nearest-neighbour storage and search over normalized
//     embeddings. Two instances exist, one per embedding dimension
//     (text and image).
//   - TextEmbedder: Generates text embeddings for chunks and questions.
//   - Generator: Produces grounded answers from retrieved contexts.
//
// # Optional Interfaces
//
//   - ImageEmbedder: Cross-modal embeddings. Without it, image-index
//     search is disabled and queries degrade to text-only retrieval.
//   - Extractor: Turns files into chunks. Only the ingestion entry
//     points need it.
//   - HistoryStore: Durable conversation history.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
