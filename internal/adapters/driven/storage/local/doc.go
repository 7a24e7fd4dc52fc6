// Package local provides a filesystem-backed implementation of driven.BlobStore.
//
// Keys are slash-separated and map onto paths below a root directory.
// Writes go to a temporary file in the destination directory and are renamed
// into place, so a reader never observes a partially written object.
package local
