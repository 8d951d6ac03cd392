// Package services implements the driving port interfaces.
// Services contain the core retrieval, ranking and ingestion logic and
// orchestrate calls to driven ports (adapters).
//
// Services are pure Go; embedding, generation and storage happen behind
// the driven ports.
package services
