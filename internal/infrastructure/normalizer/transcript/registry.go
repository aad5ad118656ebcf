// Package transcript holds the per-institution XML plugins and the registry
// that routes a raw transcript file to the first plugin recognizing it.
package transcript

import (
	"github.com/mverdier/admission-verifier/internal/core/ports"
)

// Registry keeps plugins in registration order. Resolve returns the first
// plugin whose CanNormalize accepts the payload, so more specific dialects
// should be registered before permissive ones.
type Registry struct {
	plugins []ports.TranscriptPlugin
}

func NewRegistry(plugins ...ports.TranscriptPlugin) *Registry {
	return &Registry{plugins: plugins}
}

func (r *Registry) Register(plugin ports.TranscriptPlugin) {
	r.plugins = append(r.plugins, plugin)
}

func (r *Registry) Resolve(raw []byte) (ports.TranscriptPlugin, bool) {
	for _, plugin := range r.plugins {
		if plugin.CanNormalize(raw) {
			return plugin, true
		}
	}
	return nil, false
}
