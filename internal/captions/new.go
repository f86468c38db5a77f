package captions

import (
	"github.com/nguyentantai21042004/storycut/internal/config"
)

type implSynchronizer struct {
	cfg config.CaptionsConfig
}

// New creates a Synchronizer.
func New(cfg config.CaptionsConfig) Synchronizer {
	return &implSynchronizer{cfg: cfg}
}
