package executor

import "context"

// Executor runs external tools such as ffmpeg and whisper.cpp.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// ExecuteInDir runs the command with dir as its working directory so
	// filter arguments can reference files by relative name.
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
}
