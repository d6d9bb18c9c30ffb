package kinetics

import (
	"crypto/rand"
	"encoding/hex"
)

// NewRandomID returns a short random hex identifier for trajectories.
func NewRandomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
