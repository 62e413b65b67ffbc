// Package storage contains ports.BlobStore backends and decorators.
//
// FilesystemStore is the reference backend: one file per key under a root
// directory. MemoryStore keeps objects in process memory and is used by tests
// and single-process development setups. CompressedStore and Instrumented wrap
// any backend without changing its semantics.
package storage
