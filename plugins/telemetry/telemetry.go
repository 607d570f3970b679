// Package telemetry owns the usage-reporting preferences.
package telemetry

import (
	"github.com/vk/prefstore/internal/prefmap"
	"github.com/vk/prefstore/internal/registry"
)

// Preferences is the persisted telemetry state.
type Preferences struct {
	Enabled      bool     `cty:"enabled"`
	Endpoint     string   `cty:"endpoint"`
	SampleRate   float64  `cty:"sample_rate"`
	SessionCount int      `cty:"session_count"`
	Tags         []string `cty:"tags"`
}

// Plugin registers the telemetry preferences. A plugin instance may be
// registered exactly once; its default value is consumed by the first build.
type Plugin struct {
	defaultValue *Preferences
}

// New returns the plugin with its built-in defaults.
func New() *Plugin {
	return &Plugin{defaultValue: &Preferences{
		Enabled:    false,
		Endpoint:   "https://telemetry.example.com/v1",
		SampleRate: 0.1,
	}}
}

// Register implements registry.Plugin.
func (p *Plugin) Register(r *registry.Registry) {
	if p.defaultValue == nil {
		panic("telemetry: plugin built more than once")
	}
	def := *p.defaultValue
	p.defaultValue = nil
	registry.RegisterValue(r, def)
}

// Get returns the current telemetry preferences.
func Get(store *prefmap.Map) Preferences {
	return prefmap.GetOrDefault[Preferences](store)
}

// Update mutates the telemetry preferences in one commit.
func Update(store *prefmap.Map, fn func(*Preferences)) {
	prefmap.Update(store, fn)
}
