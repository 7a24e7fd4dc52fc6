// Package vectorindex is an exact nearest-neighbour index over chunk embeddings.
//
// Search is a linear cosine scan, which is plenty for the few hundred chunks
// a brochure or programme page produces. An index serialises to a pair of
// artifacts that always travel together:
//
//   - index.vec: little-endian float32 rows behind a small binary header
//   - index.json: format version, generation, model, dimensions and chunks
//
// Both carry the same generation id; a pair whose generations disagree was
// not written together and decodes as domain.ErrCorruptIndex.
package vectorindex
