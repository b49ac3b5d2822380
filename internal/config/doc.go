// Package config loads the floatctl configuration and secrets files.
//
// Both files are parsed as YAML, so existing JSON config files load
// unchanged. Environment variables override file values, and [Config.Validate]
// checks the result against the selected provider before any control plane
// client is built.
package config
