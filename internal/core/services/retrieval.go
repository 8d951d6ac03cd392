package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
	"github.com/SubikshaRamesh/AegisRAG/internal/core/ports/driven"
	"github.com/SubikshaRamesh/AegisRAG/internal/logger"
)

// candidate is one retrieval hit during ranking. chunk is nil when the
// id could not be resolved through the chunk store.
type candidate struct {
	id       string
	distance float64
	chunk    *domain.Chunk
	lexical  int
}

// retrievalResult is the outcome of the ranking pipeline: the selected
// chunks in final order plus the confidence derived from their original
// search distances.
type retrievalResult struct {
	chunks     []domain.Chunk
	confidence float64
}

// empty reports whether retrieval produced no usable context.
func (r retrievalResult) empty() bool {
	return len(r.chunks) == 0
}

// sources returns the citation list for the selected chunks.
func (r retrievalResult) sources() []domain.Source {
	out := make([]domain.Source, 0, len(r.chunks))
	for _, c := range r.chunks {
		out = append(out, domain.SourceFor(c))
	}
	return out
}

// ranker fuses vector hits from both indices into a ranked,
// deduplicated, bounded chunk selection.
type ranker struct {
	chunkStore driven.ChunkStore

	// perTypeCap bounds accepted chunks per source type during the
	// dedup walk. Zero disables the cap (the default).
	perTypeCap int
}

// rank resolves, scores, orders and selects candidates.
//
// Ordering is descending lexical overlap with ascending distance as the
// tie-break: a literal keyword hit is a stronger precision signal than a
// small distance delta. The walk over the ranked list keeps the first
// occurrence of each chunk id, so the best-ranked occurrence survives.
func (rk *ranker) rank(ctx context.Context, question string, hits []domain.RetrievedChunk, topK int) (retrievalResult, error) {
	if len(hits) == 0 {
		return retrievalResult{}, nil
	}

	words := questionWords(question)

	candidates := make([]candidate, 0, len(hits))
	for _, hit := range hits {
		c := candidate{id: hit.ChunkID, distance: hit.Distance}

		chunk, err := rk.chunkStore.GetChunk(ctx, hit.ChunkID)
		switch {
		case err == nil:
			c.chunk = chunk
			c.lexical = lexicalScore(words, chunk.Payload.Value())
		case errors.Is(err, domain.ErrNotFound):
			// Index/store drift. Score zero and let resolution
			// drop it rather than failing the whole query.
			logger.Warn("chunk %s in index but not in store", hit.ChunkID)
		default:
			return retrievalResult{}, err
		}

		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].lexical != candidates[j].lexical {
			return candidates[i].lexical > candidates[j].lexical
		}
		return candidates[i].distance < candidates[j].distance
	})

	chunks := make([]domain.Chunk, 0, topK)
	distances := make([]float64, 0, topK)
	seen := make(map[string]struct{}, topK)
	perType := make(map[string]int)

	for _, c := range candidates {
		if len(chunks) == topK {
			break
		}
		if _, dup := seen[c.id]; dup {
			continue
		}
		seen[c.id] = struct{}{}

		if c.chunk == nil {
			continue
		}
		if rk.perTypeCap > 0 && perType[c.chunk.SourceType] >= rk.perTypeCap {
			continue
		}
		perType[c.chunk.SourceType]++

		chunks = append(chunks, *c.chunk)
		distances = append(distances, c.distance)
	}

	return retrievalResult{
		chunks:     chunks,
		confidence: confidenceFrom(distances),
	}, nil
}

// questionWords splits a question into lowercase words for lexical
// scoring.
func questionWords(question string) []string {
	return strings.Fields(strings.ToLower(question))
}

// lexicalScore counts question words found as case-insensitive
// substrings of the chunk text.
func lexicalScore(words []string, text string) int {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	score := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			score++
		}
	}
	return score
}

// confidenceFrom maps the mean L2 distance of the selected chunks onto
// a 0-100 scale. Squared L2 over normalized vectors ranges roughly 0-2,
// so similarity = max(0, 1 - avg/2). Heuristic, not a calibrated
// probability.
func confidenceFrom(distances []float64) float64 {
	if len(distances) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range distances {
		sum += d
	}
	avg := sum / float64(len(distances))
	similarity := math.Max(0, 1-avg/2)
	return math.Round(similarity*100*100) / 100
}
