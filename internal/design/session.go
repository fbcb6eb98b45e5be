package design

import "sync"

// Session owns the live configuration of one user. Readers get copies, so
// an export holding a snapshot is unaffected by later edits.
type Session struct {
	mu  sync.RWMutex
	cfg Config
}

func NewSession(c Config) *Session {
	return &Session{cfg: c}
}

// Snapshot returns the current configuration by value.
func (s *Session) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update applies fn to a copy and stores the result if it validates.
func (s *Session) Update(fn func(Config) Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(s.cfg)
	if err := next.Validate(); err != nil {
		return err
	}
	s.cfg = next
	return nil
}

// Load replaces the configuration with a decoded blob. On error the
// previous configuration stays in place.
func (s *Session) Load(data []byte) error {
	c, err := Load(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = c
	s.mu.Unlock()
	return nil
}

func (s *Session) Marshal() ([]byte, error) {
	return Marshal(s.Snapshot())
}
