// Package config defines the deployer settings and provides helpers to load,
// validate and save them in YAML format.
//
// It also reads the .env file that points at the MCSManager daemon directory.
// Settings are optional: without a file every field falls back to the layout
// used by the build repository (server-core/, global.json, .env).
package config
