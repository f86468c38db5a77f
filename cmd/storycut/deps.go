package main

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/storycut/internal/captions"
	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/curator"
	"github.com/nguyentantai21042004/storycut/internal/embedding"
	"github.com/nguyentantai21042004/storycut/internal/logger"
	"github.com/nguyentantai21042004/storycut/internal/media"
	"github.com/nguyentantai21042004/storycut/internal/notify"
	"github.com/nguyentantai21042004/storycut/internal/pipeline"
	"github.com/nguyentantai21042004/storycut/internal/report"
	"github.com/nguyentantai21042004/storycut/internal/storage"
	"github.com/nguyentantai21042004/storycut/internal/timeline"
	"github.com/nguyentantai21042004/storycut/internal/transcriber"
	"github.com/nguyentantai21042004/storycut/pkg/executor"
)

// buildDeps wires the stage implementations from cfg. Kafka and S3 are only
// connected when configured. The returned func releases them.
func buildDeps(ctx context.Context, cfg *config.Config, folder string, log logger.Logger) (pipeline.Deps, func(), error) {
	exec := executor.New()

	reasoner, err := curator.NewReasoner(cfg, log)
	if err != nil {
		return pipeline.Deps{}, nil, fmt.Errorf("create curator backend: %w", err)
	}

	sync := captions.New(cfg.Captions)
	deps := pipeline.Deps{
		Prober:      media.New(),
		Transcriber: transcriber.New(cfg, exec, log),
		Curator:     curator.New(cfg.Curator, reasoner, log),
		Captions:    sync,
		Compositor:  timeline.NewCompositor(log),
		Renderer:    timeline.NewRenderer(cfg, exec, sync, log),
		Reports:     report.New(log),
	}

	if emb := embedding.New(cfg.Embedding); emb != nil {
		deps.Embedder = emb
		log.Info(ctx, "Semantic B-roll matching enabled (%s)", cfg.Embedding.Provider)
	}

	closeFn := func() {}
	if len(cfg.Kafka.Brokers) > 0 {
		pub, err := notify.New(cfg.Kafka, folder, log)
		if err != nil {
			return pipeline.Deps{}, nil, err
		}
		deps.Publisher = pub
		closeFn = func() {
			if err := pub.Close(); err != nil {
				log.Warn(context.Background(), "Closing kafka producer: %v", err)
			}
		}
		log.Info(ctx, "Publishing results to kafka topic %s", cfg.Kafka.Topic)
	}

	if cfg.Storage.Bucket != "" {
		up, err := storage.New(ctx, cfg.Storage, log)
		if err != nil {
			closeFn()
			return pipeline.Deps{}, nil, fmt.Errorf("create uploader: %w", err)
		}
		deps.Uploader = up
		log.Info(ctx, "Uploading renders to s3://%s/%s", cfg.Storage.Bucket, cfg.Storage.Prefix)
	}

	return deps, closeFn, nil
}
