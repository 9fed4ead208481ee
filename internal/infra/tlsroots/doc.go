// Package tlsroots builds client TLS configurations for storage servers.
//
// Root certificates come from the system pool plus an optional PEM file.
// A client key pair is loaded from disk and reloaded when the files are
// rotated, so a long-running shell keeps working across renewals.
package tlsroots
