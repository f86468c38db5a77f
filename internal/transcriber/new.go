package transcriber

import (
	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/logger"
	"github.com/nguyentantai21042004/storycut/pkg/executor"
)

type implTranscriber struct {
	whisper  config.WhisperConfig
	ffmpeg   string
	tempRoot string
	executor executor.Executor
	logger   logger.Logger
}

// New creates a Transcriber running whisper.cpp through exec.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Transcriber {
	return &implTranscriber{
		whisper:  cfg.Whisper,
		ffmpeg:   cfg.FFmpeg.Binary,
		tempRoot: cfg.Paths.Temp,
		executor: exec,
		logger:   log,
	}
}
