package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FlatIndex is an exact (brute-force) inner-product index held in memory.
// The corpus is a few thousand chunks, so exhaustive search is fast enough
// and keeps ranking exact rather than approximate.
type FlatIndex struct {
	dimensions int
	entries    []entry
	mu         sync.RWMutex
}

type entry struct {
	id  string
	vec []float32
}

// NewFlatIndex creates an empty index for vectors of the given dimension.
func NewFlatIndex(dimensions int) (*FlatIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}
	return &FlatIndex{dimensions: dimensions}, nil
}

// Add appends vectors under the given IDs. Vectors are copied.
func (idx *FlatIndex) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch: %d vs %d", len(ids), len(vectors))
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, id := range ids {
		if len(vectors[i]) != idx.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), idx.dimensions)
		}
		vec := make([]float32, idx.dimensions)
		copy(vec, vectors[i])
		idx.entries = append(idx.entries, entry{id: id, vec: vec})
	}
	return nil
}

// Search returns up to k hits ordered by descending inner product.
// Returns an empty result set (not an error) when the index is empty.
func (idx *FlatIndex) Search(ctx context.Context, query []float32, k int) ([]*Result, error) {
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), idx.dimensions)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if len(idx.entries) == 0 {
		return nil, nil
	}
	scored := make([]*Result, len(idx.entries))
	for i, e := range idx.entries {
		scored[i] = &Result{ID: e.id, Score: InnerProduct(query, e.vec)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Remove deletes the entries with the given IDs, if present.
func (idx *FlatIndex) Remove(ctx context.Context, ids []string) error {
	removeSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		removeSet[id] = true
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	kept := idx.entries[:0]
	for _, e := range idx.entries {
		if !removeSet[e.id] {
			kept = append(kept, e)
		}
	}
	idx.entries = kept
	return nil
}

// Save persists the index to path. Directory is created if needed.
// Format: dimensions (uint32), count (uint32), then per entry:
// idLen (uint32), id bytes, vector (dimensions*4 bytes, little endian).
func (idx *FlatIndex) Save(path string) error {
	if path == "" {
		return nil
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(idx.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(idx.entries))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, e := range idx.entries {
		idBytes := []byte(e.id)
		if err := binary.Write(f, binary.LittleEndian, uint32(len(idBytes))); err != nil {
			return fmt.Errorf("write id len: %w", err)
		}
		if _, err := f.Write(idBytes); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if err := binary.Write(f, binary.LittleEndian, e.vec); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load reads the index from path, replacing current contents. A missing file
// is not an error (the index stays empty); a dimension mismatch is.
func (idx *FlatIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != idx.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, index expects %d", dim, idx.dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	entries := make([]entry, 0, n)
	for i := uint32(0); i < n; i++ {
		var idLen uint32
		if err := binary.Read(f, binary.LittleEndian, &idLen); err != nil {
			return fmt.Errorf("read id len: %w", err)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(f, idBytes); err != nil {
			return fmt.Errorf("read id: %w", err)
		}
		vec := make([]float32, idx.dimensions)
		if err := binary.Read(f, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		entries = append(entries, entry{id: string(idBytes), vec: vec})
	}
	idx.mu.Lock()
	idx.entries = entries
	idx.mu.Unlock()
	return nil
}

// Size returns the number of vectors in the index.
func (idx *FlatIndex) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Close is a no-op for FlatIndex.
func (idx *FlatIndex) Close() error {
	return nil
}

// InnerProduct returns the inner product of two vectors. For unit-normalized
// vectors this equals cosine similarity.
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
