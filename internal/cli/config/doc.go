// Package config defines the webstash CLI configuration.
//
//   - spec.go: Config struct (~/.webstash/config.yaml)
//   - default.go: default values and paths
//   - loader.go: layered loading (file, WEBSTASH_* env, flags)
//   - verify.go: validation
//   - sanitize.go: secret masking for display and logs
package config
