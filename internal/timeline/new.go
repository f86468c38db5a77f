package timeline

import (
	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/logger"
	"github.com/nguyentantai21042004/storycut/pkg/executor"
)

type implCompositor struct {
	logger logger.Logger
}

// NewCompositor creates a Compositor.
func NewCompositor(log logger.Logger) Compositor {
	return &implCompositor{logger: log}
}

type implRenderer struct {
	ffmpeg   config.FFmpegConfig
	render   config.RenderConfig
	tempRoot string
	executor executor.Executor
	subs     SubtitleWriter
	logger   logger.Logger
}

// NewRenderer creates a Renderer that runs ffmpeg through exec.
func NewRenderer(cfg *config.Config, exec executor.Executor, subs SubtitleWriter, log logger.Logger) Renderer {
	return &implRenderer{
		ffmpeg:   cfg.FFmpeg,
		render:   cfg.Render,
		tempRoot: cfg.Paths.Temp,
		executor: exec,
		subs:     subs,
		logger:   log,
	}
}
