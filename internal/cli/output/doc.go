// Package output renders command results for the webstash CLI.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: tables via olekukonko/tablewriter
//   - json.go: indented JSON
//   - yaml.go: YAML via gopkg.in/yaml.v3
//
// Table output is for people. JSON and YAML are stable for scripts.
package output
