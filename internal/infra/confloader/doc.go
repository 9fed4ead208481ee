// Package confloader loads layered configuration with koanf.
//
// Sources, lowest to highest priority:
//
//  1. Defaults already present in the target struct
//  2. A YAML configuration file
//  3. Environment variables (WEBSTASH_ prefix, "__" between levels)
//  4. Overrides, usually command-line flags
//
// Watcher reports changes to configuration files through fsnotify so a
// long-running session can reload them.
package confloader
