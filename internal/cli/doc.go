// Package cli translates command-line arguments into an app.Config. It owns
// flag definitions, usage text and input validation, keeping the app package
// free of any entrypoint concerns.
package cli
