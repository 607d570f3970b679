// Package registry provides the central "glue" for the preference system.
//
// The Registry is responsible for storing mappings between the type
// identifiers used in persisted documents (e.g. "AudioPreferences" or the
// fully qualified "github.com/you/app/audio.AudioPreferences") and the
// actual compiled Go types that own those values, together with their
// default-value factories.
//
// During application startup the registry is populated by each plugin and
// then sealed. Registration after sealing, or resolving a type that was
// never registered, indicates that the Go code and the set of registered
// preference owners are out of sync; both fail loudly rather than at some
// later read of the user's stored data.
package registry
