package blogpage

import "sync"

// scope releases registered resources once, in reverse registration order.
type scope struct {
	mu       sync.Mutex
	releases []func()
	closed   bool
}

// add registers release. If the scope is already closed, release runs immediately.
func (s *scope) add(release func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		release()
		return
	}
	s.releases = append(s.releases, release)
	s.mu.Unlock()
}

func (s *scope) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	releases := s.releases
	s.releases = nil
	s.mu.Unlock()

	for i := len(releases) - 1; i >= 0; i-- {
		releases[i]()
	}
}
