package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// DefaultSessionTTL is how long a selection is reused before a new one is drawn.
const DefaultSessionTTL = 30 * time.Minute

// Selection is the set of images picked for one theme.
type Selection struct {
	Background   string `json:"background"`
	Geometry     string `json:"geometry"`
	Profile      string `json:"profile,omitempty"`
	BgIndex      int    `json:"bgIndex"`
	GeoIndex     int    `json:"geoIndex"`
	ProfileIndex int    `json:"profileIndex"`
}

type sessionState struct {
	Selected  Selection `json:"selectedImages"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionCache keeps the last selection on disk so repeated renders within
// the TTL show the same images.
type SessionCache struct {
	path   string
	ttl    time.Duration
	now    func() time.Time
	logger hclog.Logger
	mu     sync.Mutex
}

// NewSessionCache creates a cache stored at path. A zero ttl uses DefaultSessionTTL.
func NewSessionCache(path string, ttl time.Duration, logger hclog.Logger) *SessionCache {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SessionCache{path: path, ttl: ttl, now: time.Now, logger: logger}
}

// Get returns the stored selection if it is still within the TTL.
// Missing, corrupt or expired state reports false.
func (s *SessionCache) Get() (Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("error reading session state", "path", s.path, "error", err)
		}
		return Selection{}, false
	}

	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("ignoring corrupt session state", "path", s.path, "error", err)
		return Selection{}, false
	}
	if s.now().Sub(state.Timestamp) >= s.ttl {
		return Selection{}, false
	}
	return state.Selected, true
}

// Save stores sel with the current time.
func (s *SessionCache) Save(sel Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sessionState{Selected: sel, Timestamp: s.now()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - cache directory needs standard permissions
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil { // #nosec G306 - session state is not secret
		return fmt.Errorf("failed to write session state: %w", err)
	}
	return nil
}

// Clear removes the stored selection.
func (s *SessionCache) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear session state: %w", err)
	}
	return nil
}
