// Package module defines the minimal contract for a modkit module
package module

// Module defines the minimal contract used by modkit
// warwatch modules are worker/CLI shaped, so the surface is ports + a name
type Module interface {
	Ports() any
	Name() string
}
