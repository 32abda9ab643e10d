package pitch

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/opencrew/pitchboard/internal/models"
)

// Manager owns the live pitch sessions, keyed by an opaque ID that the web
// layer stores in the browser session. Sessions live in memory only and are
// never persisted.
type Manager struct {
	deps   Deps
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(deps Deps, logger *slog.Logger) *Manager {
	return &Manager{
		deps:     deps,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Open creates a fresh session for the investor and returns its ID. Opening
// is always a full reset; any previous session the caller held should be
// closed first.
func (m *Manager) Open(investor models.Investor) (string, *Session) {
	id := uuid.NewString()
	session := NewSession(investor, m.deps, m.logger)

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()
	return id, session
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	return session, ok
}

// Close discards the session and releases any capture device it holds.
// Closing an unknown ID is a no-op.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		session.close()
	}
}
