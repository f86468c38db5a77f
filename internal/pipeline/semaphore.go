package pipeline

import "context"

// semaphore limits how many clips are processed at once
type semaphore struct {
	ch chan struct{}
}

func newSemaphore(capacity int) *semaphore {
	return &semaphore{
		ch: make(chan struct{}, max(capacity, 1)),
	}
}

// acquire blocks until a slot is free or ctx is done
func (s *semaphore) acquire(ctx context.Context) error {
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *semaphore) release() {
	<-s.ch
}
