// Package main provides the entry point for webstash.
//
// Values are stored per scope: the persistent scope is backed by a storage
// engine (badger, sqlite, leveldb or redis) and the session scope lives in
// memory for the lifetime of the process. Values can be compressed,
// encrypted and given a time to live.
//
// Usage:
//
//	webstash set theme dark
//	webstash --encrypt --encryption-key secret set token '{"v":1}'
//	webstash -o json get token
//	webstash repl
package main
