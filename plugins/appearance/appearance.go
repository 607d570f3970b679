// Package appearance owns the look-and-feel preferences. It is a typical
// preference owner: it declares its own struct, registers it with a default
// value, and offers typed access so other packages never touch the raw
// store keys.
package appearance

import (
	"github.com/vk/prefstore/internal/prefmap"
	"github.com/vk/prefstore/internal/registry"
)

// Preferences is the persisted appearance state.
type Preferences struct {
	Theme         string  `cty:"theme"`
	UIScale       float64 `cty:"ui_scale"`
	ShowStatusBar bool    `cty:"show_status_bar"`
}

// Plugin registers the appearance preferences. A plugin instance may be
// registered exactly once; its default value is consumed by the first build.
type Plugin struct {
	defaultValue *Preferences
}

// New returns the plugin with its built-in defaults.
func New() *Plugin {
	return &Plugin{defaultValue: &Preferences{
		Theme:         "system",
		UIScale:       1.0,
		ShowStatusBar: true,
	}}
}

// Register implements registry.Plugin.
func (p *Plugin) Register(r *registry.Registry) {
	if p.defaultValue == nil {
		panic("appearance: plugin built more than once")
	}
	def := *p.defaultValue
	p.defaultValue = nil
	registry.RegisterValue(r, def)
}

// Get returns the current appearance preferences.
func Get(store *prefmap.Map) Preferences {
	return prefmap.GetOrDefault[Preferences](store)
}

// Update mutates the appearance preferences in one commit.
func Update(store *prefmap.Map, fn func(*Preferences)) {
	prefmap.Update(store, fn)
}
