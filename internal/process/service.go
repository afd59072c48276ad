package process

import (
	"os"
	"sync"

	"github.com/onecst/onecst/internal/errors"
)

// Service is a handle to a long-lived child process such as the
// administration service. Stop is fire-and-forget: it signals the process and
// returns without waiting for it to exit.
type Service struct {
	name string
	stop func() error

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
	once    sync.Once
}

// NewService wraps a stop function into a Service. Runner implementations
// other than CLIRunner use it to hand out their own handles.
func NewService(name string, stop func() error) *Service {
	return &Service{
		name: name,
		stop: stop,
		done: make(chan struct{}),
	}
}

// Name returns the executable base name of the service.
func (s *Service) Name() string {
	return s.name
}

// Stop signals the service to terminate. Only the first call signals;
// later calls return nil. A process that already exited is not an error.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true

	if s.stop == nil {
		return nil
	}
	if err := s.stop(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return errors.NewCommandError("failed to stop "+s.name, err).WithExecutable(s.name)
	}
	return nil
}

// Stopped reports whether Stop has been called.
func (s *Service) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Done is closed once the process has exited and its output is drained.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

func (s *Service) markDone() {
	s.once.Do(func() { close(s.done) })
}
