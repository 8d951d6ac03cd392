// Package flat provides an exact nearest-neighbour vector index over
// L2-normalized embeddings.
//
// The index is a flat store: search scans every vector and returns exact
// squared-L2 distances, so results are deterministic for a fixed index
// state and query. Chunk identities live in an id list kept in lockstep
// with the physical vector order; the ordinal position is the join key
// between the two, which is why neither side is ever reordered
// independently.
//
// # Persistence
//
// State is snapshotted to two companion files: a binary vector file and
// a gob-encoded id list. They form one logical unit - loading one
// without the matching other is treated as corruption, not recovered
// from. Saves go through a temp file and rename so a failed save leaves
// the previous snapshot intact.
package flat

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
	"github.com/SubikshaRamesh/AegisRAG/internal/core/ports/driven"
	"github.com/SubikshaRamesh/AegisRAG/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// File format constants for the vector snapshot.
const (
	vectorMagic   = "AEGISVEC"
	vectorVersion = uint32(1)
)

// Index is a flat exact-L2 vector index with on-disk snapshots.
// All operations serialize behind one mutex; independent instances
// (text, image) have independent locks and run fully in parallel.
type Index struct {
	mu sync.Mutex

	dim     int
	vectors []float32 // row-major, len == dim * len(ids)
	ids     []string  // ordinal position mirrors vector order
	idSet   map[string]struct{}

	indexPath string
	idsPath   string
	closed    bool
}

// New creates or loads an index of the given dimension. The two
// companion files live under dir with the given name. If both snapshot
// files exist they are loaded as a pair; if exactly one exists the
// state is corrupt and New fails with domain.ErrCorruptIndex; if
// neither exists the index starts empty.
func New(dir, name string, dim int) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	idx := &Index{
		dim:       dim,
		idSet:     make(map[string]struct{}),
		indexPath: filepath.Join(dir, name+".index"),
		idsPath:   filepath.Join(dir, name+".ids"),
	}

	indexExists := fileExists(idx.indexPath)
	idsExists := fileExists(idx.idsPath)

	switch {
	case indexExists && idsExists:
		if err := idx.load(); err != nil {
			return nil, err
		}
		logger.Info("Loaded vector index %s: %d vectors (dim %d)", name, len(idx.ids), dim)
	case indexExists != idsExists:
		return nil, fmt.Errorf("%w: only one of %s, %s exists",
			domain.ErrCorruptIndex, idx.indexPath, idx.idsPath)
	default:
		logger.Debug("Starting empty vector index %s (dim %d)", name, dim)
	}

	return idx, nil
}

// Add appends the non-duplicate subset of the given (embedding, chunk)
// pairs and returns the number of vectors inserted. This is the single
// enforcement point for "one chunk embedded into any index at most
// once". All inputs are validated before anything becomes visible, so
// a failure inserts nothing.
func (idx *Index) Add(_ context.Context, embeddings [][]float32, chunks []domain.Chunk) (int, error) {
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("%w: %d embeddings for %d chunks",
			domain.ErrInvalidInput, len(embeddings), len(chunks))
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return 0, domain.ErrIndexClosed
	}

	// Select non-duplicates and validate dimensions up front.
	var newIDs []string
	var newVecs [][]float32
	batch := make(map[string]struct{}, len(chunks))
	for i, chunk := range chunks {
		if _, dup := idx.idSet[chunk.ID]; dup {
			logger.Warn("Duplicate chunk id %s, skipping", chunk.ID)
			continue
		}
		if _, dup := batch[chunk.ID]; dup {
			logger.Warn("Duplicate chunk id %s within batch, skipping", chunk.ID)
			continue
		}
		if len(embeddings[i]) != idx.dim {
			return 0, fmt.Errorf("%w: got %d, index dimension %d",
				domain.ErrDimensionMismatch, len(embeddings[i]), idx.dim)
		}
		batch[chunk.ID] = struct{}{}
		newIDs = append(newIDs, chunk.ID)
		newVecs = append(newVecs, normalize(embeddings[i]))
	}

	if len(newIDs) == 0 {
		logger.Debug("No new vectors to add (all duplicates)")
		return 0, nil
	}

	for i, vec := range newVecs {
		idx.vectors = append(idx.vectors, vec...)
		idx.ids = append(idx.ids, newIDs[i])
		idx.idSet[newIDs[i]] = struct{}{}
	}

	logger.Debug("Added %d vectors (total %d)", len(newIDs), len(idx.ids))
	return len(newIDs), nil
}

// Search returns up to topK nearest chunk ids with squared-L2 distances
// in ascending order. The query is normalized exactly as inserts are;
// mismatched normalization would make distances meaningless.
func (idx *Index) Search(_ context.Context, query []float32, topK int) ([]domain.RetrievedChunk, error) {
	if len(query) != idx.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), idx.dim)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive", domain.ErrInvalidInput)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return nil, domain.ErrIndexClosed
	}
	if len(idx.ids) == 0 {
		return nil, nil
	}

	q := normalize(query)

	type scored struct {
		ord  int
		dist float64
	}
	scores := make([]scored, len(idx.ids))
	for ord := range idx.ids {
		row := idx.vectors[ord*idx.dim : (ord+1)*idx.dim]
		var sum float64
		for j, v := range row {
			d := float64(q[j]) - float64(v)
			sum += d * d
		}
		scores[ord] = scored{ord: ord, dist: sum}
	}

	// Stable sort keeps insertion order for exact ties, so results are
	// reproducible.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].dist < scores[j].dist
	})

	if topK > len(scores) {
		topK = len(scores)
	}

	results := make([]domain.RetrievedChunk, 0, topK)
	for _, s := range scores[:topK] {
		results = append(results, domain.RetrievedChunk{
			ChunkID:  idx.ids[s.ord],
			Distance: s.dist,
		})
	}
	return results, nil
}

// Save atomically persists both companion files. Readers are excluded
// for the duration of the write.
func (idx *Index) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return domain.ErrIndexClosed
	}

	if err := idx.saveVectors(); err != nil {
		return fmt.Errorf("saving vector file: %w", err)
	}
	if err := idx.saveIDs(); err != nil {
		return fmt.Errorf("saving id list: %w", err)
	}

	logger.Debug("Saved vector index: %d vectors", len(idx.ids))
	return nil
}

// Reset clears in-memory state and removes the on-disk files.
func (idx *Index) Reset() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return domain.ErrIndexClosed
	}

	idx.vectors = nil
	idx.ids = nil
	idx.idSet = make(map[string]struct{})

	for _, path := range []string{idx.indexPath, idx.idsPath} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}

	logger.Info("Vector index reset")
	return nil
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.ids)
}

// Dimension returns the configured vector dimension.
func (idx *Index) Dimension() int {
	return idx.dim
}

// Close marks the index unusable without saving.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.closed = true
	return nil
}

// saveVectors writes the binary vector snapshot via temp file + rename.
func (idx *Index) saveVectors() error {
	tmp, err := os.CreateTemp(filepath.Dir(idx.indexPath), ".vec-*")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	w := bufio.NewWriter(tmp)
	if _, err := w.WriteString(vectorMagic); err != nil {
		return err
	}
	header := []any{vectorVersion, uint32(idx.dim), uint64(len(idx.ids))}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, idx.vectors); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), idx.indexPath)
}

// saveIDs writes the gob-encoded id list via temp file + rename.
func (idx *Index) saveIDs() error {
	tmp, err := os.CreateTemp(filepath.Dir(idx.idsPath), ".ids-*")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	w := bufio.NewWriter(tmp)
	if err := gob.NewEncoder(w).Encode(idx.ids); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), idx.idsPath)
}

// load reads both companion files and verifies they agree.
func (idx *Index) load() error {
	vectors, count, err := idx.loadVectors()
	if err != nil {
		return err
	}

	ids, err := idx.loadIDs()
	if err != nil {
		return err
	}

	if uint64(len(ids)) != count {
		return fmt.Errorf("%w: %d ids for %d vectors", domain.ErrCorruptIndex, len(ids), count)
	}

	idx.vectors = vectors
	idx.ids = ids
	idx.idSet = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idx.idSet[id] = struct{}{}
	}
	return nil
}

func (idx *Index) loadVectors() ([]float32, uint64, error) {
	f, err := os.Open(idx.indexPath)
	if err != nil {
		return nil, 0, fmt.Errorf("opening vector file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	magic := make([]byte, len(vectorMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, 0, fmt.Errorf("%w: reading magic: %v", domain.ErrCorruptIndex, err)
	}
	if string(magic) != vectorMagic {
		return nil, 0, fmt.Errorf("%w: bad magic %q", domain.ErrCorruptIndex, magic)
	}

	var version, dim uint32
	var count uint64
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, 0, fmt.Errorf("%w: reading version: %v", domain.ErrCorruptIndex, err)
	}
	if version != vectorVersion {
		return nil, 0, fmt.Errorf("%w: unsupported version %d", domain.ErrCorruptIndex, version)
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, 0, fmt.Errorf("%w: reading dimension: %v", domain.ErrCorruptIndex, err)
	}
	if int(dim) != idx.dim {
		return nil, 0, fmt.Errorf("%w: file dimension %d, configured %d",
			domain.ErrDimensionMismatch, dim, idx.dim)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, 0, fmt.Errorf("%w: reading count: %v", domain.ErrCorruptIndex, err)
	}

	vectors := make([]float32, int(count)*idx.dim)
	if err := binary.Read(r, binary.LittleEndian, vectors); err != nil {
		return nil, 0, fmt.Errorf("%w: reading vectors: %v", domain.ErrCorruptIndex, err)
	}
	return vectors, count, nil
}

func (idx *Index) loadIDs() ([]string, error) {
	f, err := os.Open(idx.idsPath)
	if err != nil {
		return nil, fmt.Errorf("opening id list: %w", err)
	}
	defer f.Close()

	var ids []string
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&ids); err != nil {
		return nil, fmt.Errorf("%w: decoding id list: %v", domain.ErrCorruptIndex, err)
	}
	return ids, nil
}

// normalize returns an L2-normalized copy. Zero vectors are returned
// unchanged to avoid dividing by zero.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	out := make([]float32, len(vec))
	if sum == 0 {
		copy(out, vec)
		return out
	}
	norm := math.Sqrt(sum)
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
