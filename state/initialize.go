package state

import (
	"net/http"
	"time"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
		// replaced with configured client once configuration is loaded
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}
