package run

import (
	"os"
	"time"
)

// Actor identifies who started a run.
type Actor struct {
	Hostname string `yaml:"hostname"`
	Username string `yaml:"username"`
}

// Marker is persisted while a run is in progress.
type Marker struct {
	PID       int       `yaml:"pid"`
	Actor     *Actor    `yaml:"actor,omitempty"`
	StartedAt time.Time `yaml:"started_at"`
}

// NewMarker describes the current process.
func NewMarker(actor *Actor) *Marker {
	return &Marker{
		PID:       os.Getpid(),
		Actor:     actor,
		StartedAt: time.Now().UTC(),
	}
}

// Owner is a short description used in log and error messages.
func (m *Marker) Owner() string {
	if m.Actor == nil {
		return "unknown"
	}

	return m.Actor.Username + "@" + m.Actor.Hostname
}
