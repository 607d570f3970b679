// Package app wires the preference store together: it builds the logger and
// registry, lets every plugin register its preference types, loads the
// persisted document through the configured backend, and drives the save
// scheduler from its tick loop. It is decoupled from any specific entrypoint
// like a CLI.
package app
