// Package memory provides in-memory implementations of the storage ports.
//
// They back the "memory" storage and item backends used for dry runs and
// tests. Nothing survives the process.
package memory
