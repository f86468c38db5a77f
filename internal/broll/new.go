package broll

import (
	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/embedding"
	"github.com/nguyentantai21042004/storycut/internal/logger"
)

type implMatcher struct {
	cfg      config.BrollConfig
	library  *Library
	usage    *UsageTable
	embedder embedding.Embedder
	logger   logger.Logger
}

// New creates a Matcher over lib. usage is shared by every matcher of a run;
// embedder may be nil, in which case only tags are scored.
func New(cfg config.BrollConfig, lib *Library, usage *UsageTable, embedder embedding.Embedder, log logger.Logger) Matcher {
	if usage == nil {
		usage = NewUsageTable()
	}
	return &implMatcher{
		cfg:      cfg,
		library:  lib,
		usage:    usage,
		embedder: embedder,
		logger:   log,
	}
}
