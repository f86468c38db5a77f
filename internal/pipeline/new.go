package pipeline

import (
	"sync"

	"github.com/nguyentantai21042004/storycut/internal/broll"
	"github.com/nguyentantai21042004/storycut/internal/captions"
	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/curator"
	"github.com/nguyentantai21042004/storycut/internal/embedding"
	"github.com/nguyentantai21042004/storycut/internal/logger"
	"github.com/nguyentantai21042004/storycut/internal/media"
	"github.com/nguyentantai21042004/storycut/internal/notify"
	"github.com/nguyentantai21042004/storycut/internal/report"
	"github.com/nguyentantai21042004/storycut/internal/storage"
	"github.com/nguyentantai21042004/storycut/internal/timeline"
	"github.com/nguyentantai21042004/storycut/internal/transcriber"
)

// Deps are the stage implementations. Embedder, Publisher and Uploader are
// optional.
type Deps struct {
	Prober      media.Prober
	Transcriber transcriber.Transcriber
	Curator     curator.Curator
	Captions    captions.Synchronizer
	Embedder    embedding.Embedder
	Compositor  timeline.Compositor
	Renderer    timeline.Renderer
	Reports     report.Writer
	Publisher   notify.Publisher
	Uploader    storage.Uploader
}

type implPipeline struct {
	cfg    *config.Config
	deps   Deps
	logger logger.Logger
	shared *sharedBroll
}

// sharedBroll is the B-roll state of a session. The usage table is the only
// part written after loading.
type sharedBroll struct {
	once    sync.Once
	usage   *broll.UsageTable
	matcher broll.Matcher
	note    string
}

// New creates a Pipeline.
func New(cfg *config.Config, deps Deps, log logger.Logger) Pipeline {
	return &implPipeline{
		cfg:    cfg,
		deps:   deps,
		logger: log,
	}
}

func (p *implPipeline) Session() Pipeline {
	return &implPipeline{
		cfg:    p.cfg,
		deps:   p.deps,
		logger: p.logger,
		shared: &sharedBroll{usage: broll.NewUsageTable()},
	}
}
