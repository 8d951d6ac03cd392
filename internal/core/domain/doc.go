// Package domain defines the core business entities for AegisRAG.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies beyond uuid and defines the
// fundamental types:
//
//   - Chunk: The atomic retrievable unit with deterministic identity
//   - Payload: Tagged variant carrying literal text or a media reference
//   - RetrievedChunk: A chunk identity paired with its search distance
//   - Answer / QueryResult: Generation and query outcomes
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
package domain
