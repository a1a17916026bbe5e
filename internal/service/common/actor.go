//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"

	"github.com/oshokin/dash-build/internal/domain/run"
)

// DetectActor gathers host and user information recorded in the run marker.
func DetectActor() (*run.Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &run.Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
