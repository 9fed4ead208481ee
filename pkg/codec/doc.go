// Package codec provides reversible, text-safe encodings for stored
// records.
//
// Every codec maps UTF-8 text to ASCII text and back, so its output can be
// kept by any host store that only accepts strings:
//
//   - base64: standard base64 of the UTF-8 bytes
//   - snappy: snappy block compression, then base64
//   - zstd: zstandard compression, then base64
package codec
