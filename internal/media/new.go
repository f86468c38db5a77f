package media

import (
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ProbeFunc returns the ffprobe JSON document of a file.
type ProbeFunc func(path string) (string, error)

type implProber struct {
	probe ProbeFunc
}

// New creates a Prober backed by ffprobe.
func New() Prober {
	return &implProber{
		probe: func(path string) (string, error) {
			return ffmpeg.Probe(path)
		},
	}
}

// NewWithProbe creates a Prober using a custom probe function.
func NewWithProbe(fn ProbeFunc) Prober {
	return &implProber{probe: fn}
}
