// Package file loads the drawsync configuration from a TOML file.
//
// The default location is ~/.drawsync/config.toml. A missing file yields
// Default(); unknown keys are rejected so typos surface at startup.
package file
