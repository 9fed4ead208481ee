// Package storage provides the host stores behind webstash.
//
// A host store is a flat string map implementing entry.Store. Open selects
// one by engine name:
//
//   - memory: process-local, insertion ordered (package memory)
//   - badger: embedded Badger v3 directory (this package)
//   - sqlite: single-file SQLite database (package sqlite)
//   - leveldb: embedded LevelDB directory (package leveldb)
//   - redis: one Redis hash per namespace (package redis)
//
// Every engine also implements entry.Ranger, so the Manager's capacity
// estimate reads all values in a single pass.
package storage
