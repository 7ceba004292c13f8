package classifier

import (
	"context"
	"time"
)

// admit reserves a queue slot and then an in-flight slot. The returned
// release func must be deferred by the caller.
func (s *Service) admit(ctx context.Context) (func(), error) {
	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}

	timer := time.NewTimer(s.maxQueueWait)
	defer timer.Stop()
	select {
	case s.queue <- struct{}{}:
		// reserved queue slot
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{}
	}

	// Wait to acquire an in-flight slot
	acquired := false
	defer func() {
		if !acquired {
			<-s.queue
		}
	}()
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	timer2 := time.NewTimer(s.maxQueueWait)
	defer timer2.Stop()
	select {
	case s.slots <- struct{}{}:
		acquired = true
		return func() { <-s.slots; <-s.queue }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer2.C:
		return func() {}, tooBusyError{}
	}
}
