package vectorindex

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/custodia-labs/briefly/internal/core/domain"
)

// Artifact file names inside an index directory.
const (
	VectorsFile  = "index.vec"
	MetadataFile = "index.json"
)

// FormatVersion is the on-disk format written by Encode.
const FormatVersion = 1

var vectorsMagic = [4]byte{'B', 'R', 'F', 'V'}

// metadata is the index.json document.
type metadata struct {
	Version    int            `json:"version"`
	Generation string         `json:"generation"`
	Model      string         `json:"model"`
	Dimensions int            `json:"dimensions"`
	Chunks     []domain.Chunk `json:"chunks"`
}

// Encode serialises the index into its vectors and metadata artifacts,
// both stamped with generation.
func (idx *Index) Encode(generation string) (vectors, meta []byte, err error) {
	if generation == "" {
		return nil, nil, fmt.Errorf("%w: generation is required", domain.ErrInvalidInput)
	}
	if len(generation) > math.MaxUint16 {
		return nil, nil, fmt.Errorf("%w: generation too long", domain.ErrInvalidInput)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var buf bytes.Buffer
	buf.Grow(4 + 2 + 2 + len(generation) + 8 + len(idx.entries)*idx.dimensions*4)
	buf.Write(vectorsMagic[:])
	// bytes.Buffer writes never fail.
	_ = binary.Write(&buf, binary.LittleEndian, uint16(FormatVersion))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(generation)))
	buf.WriteString(generation)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(idx.dimensions))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(idx.entries)))

	row := make([]byte, 4)
	chunks := make([]domain.Chunk, len(idx.entries))
	for i, e := range idx.entries {
		chunks[i] = e.chunk
		for _, x := range e.vector {
			binary.LittleEndian.PutUint32(row, math.Float32bits(x))
			buf.Write(row)
		}
	}

	meta, err = json.Marshal(metadata{
		Version:    FormatVersion,
		Generation: generation,
		Model:      idx.model,
		Dimensions: idx.dimensions,
		Chunks:     chunks,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("marshal metadata: %w", err)
	}

	return buf.Bytes(), meta, nil
}

// Decode rebuilds an index from its two artifacts.
// Any structural problem, including a generation mismatch between the two,
// returns an error wrapping domain.ErrCorruptIndex.
func Decode(vectors, meta []byte) (*Index, error) {
	var md metadata
	if err := json.Unmarshal(meta, &md); err != nil {
		return nil, corrupt("decode metadata: %v", err)
	}
	if md.Version != FormatVersion {
		return nil, corrupt("unsupported metadata version %d", md.Version)
	}

	r := bytes.NewReader(vectors)

	var magic [4]byte
	if _, err := r.Read(magic[:]); err != nil || magic != vectorsMagic {
		return nil, corrupt("bad vectors header")
	}

	var version, genLen uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, corrupt("read version: %v", err)
	}
	if version != FormatVersion {
		return nil, corrupt("unsupported vectors version %d", version)
	}
	if err := binary.Read(r, binary.LittleEndian, &genLen); err != nil {
		return nil, corrupt("read generation: %v", err)
	}
	gen := make([]byte, genLen)
	if n, _ := r.Read(gen); n != int(genLen) {
		return nil, corrupt("truncated generation")
	}
	if string(gen) != md.Generation {
		return nil, corrupt("generation mismatch: vectors %q, metadata %q", gen, md.Generation)
	}

	var dims, count uint32
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return nil, corrupt("read dimensions: %v", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, corrupt("read count: %v", err)
	}
	if int(dims) != md.Dimensions {
		return nil, corrupt("dimension mismatch: vectors %d, metadata %d", dims, md.Dimensions)
	}
	if int(count) != len(md.Chunks) {
		return nil, corrupt("count mismatch: vectors %d, metadata %d", count, len(md.Chunks))
	}
	if want := int64(count) * int64(dims) * 4; int64(r.Len()) != want {
		return nil, corrupt("vector rows are %d bytes, want %d", r.Len(), want)
	}

	idx := New(int(dims), md.Model)
	idx.generation = md.Generation
	idx.entries = make([]entry, 0, count)

	row := make([]byte, 4)
	for _, chunk := range md.Chunks {
		v := make([]float32, dims)
		for j := range v {
			// Length was checked above.
			_, _ = r.Read(row)
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(row))
		}
		idx.entries = append(idx.entries, entry{chunk: chunk, vector: v})
	}

	return idx, nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrCorruptIndex, fmt.Sprintf(format, args...))
}
