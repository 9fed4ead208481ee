// Package entry provides the entry manager for webstash.
//
// A Manager wraps one host key/value store (session or persistent scope)
// and adds three optional behaviors on top of it:
//
//   - Expiration: records carry an absolute expiry and are deleted lazily on read
//   - Encryption: the stored text is sealed with a passphrase-derived key
//   - Compression: the serialized record passes through a text-safe codec
//
// Writes run encode -> encrypt -> capacity check -> write. Reads run
// decrypt -> decode -> expiration check. Failures never reach the caller:
// Set degrades to a no-op and Get reports the record as absent, with a
// warning on the configured logger.
//
// Usage:
//
//	m, err := entry.New(entry.Config{ExpirationEnabled: true}, entry.Host{Persistent: store})
//	m.Set(ctx, "profile", profile, 10*time.Minute)
//	p, ok := entry.GetAs[Profile](ctx, m, "profile")
package entry
