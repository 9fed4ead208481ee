// Package memory provides in-memory storage for webstash.
//
// Store keeps entries in insertion order behind a single RWMutex, so Key
// indexes are stable between writes, the way a browser's Storage.key(i)
// behaves.
//
// Features:
//
//   - Quota: WithQuota enforces a hard byte limit and fails writes with
//     entry.ErrQuotaExceeded.
//   - Fault injection: WithFailingWrites makes every write fail, for
//     simulating hosts that refuse storage.
//
// Thread Safety:
//
// All operations are thread-safe. Read operations use RLock, write
// operations use Lock.
package memory
