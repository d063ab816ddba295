// Package session manages the panel login lifecycle and server selection.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kamir/gopanelbot/internal/panel"
)

// State is the login lifecycle state.
type State int

const (
	LoggedOut State = iota
	LoggingIn
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged_out"
	case LoggingIn:
		return "logging_in"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// PanelClient is the slice of the panel API the manager needs.
type PanelClient interface {
	Login(ctx context.Context) error
	ListServers(ctx context.Context) ([]*panel.Server, error)
}

// Manager owns the single login attempt and the selected server. It is
// written once during startup and read-only afterwards.
type Manager struct {
	client PanelClient

	mu     sync.RWMutex
	state  State
	server *panel.Server
	reason error
}

// NewManager creates a manager in the LoggedOut state.
func NewManager(client PanelClient) *Manager {
	return &Manager{client: client, state: LoggedOut}
}

// Login authenticates against the panel and selects the first listed
// server. It is called exactly once, when the gateway becomes ready; a
// repeat call on a manager past LoggedOut is a no-op returning the stored
// outcome. There is no automatic retry.
func (m *Manager) Login(ctx context.Context) error {
	m.mu.Lock()
	if m.state != LoggedOut {
		reason := m.reason
		m.mu.Unlock()
		return reason
	}
	m.state = LoggingIn
	m.mu.Unlock()

	err := m.login(ctx)

	m.mu.Lock()
	if err != nil {
		m.state = Failed
		m.reason = err
	} else {
		m.state = Ready
	}
	m.mu.Unlock()
	return err
}

func (m *Manager) login(ctx context.Context) error {
	if err := m.client.Login(ctx); err != nil {
		slog.Error("Session: panel login failed", "error", err)
		return fmt.Errorf("panel login failed: %w", err)
	}

	servers, err := m.client.ListServers(ctx)
	if err != nil {
		slog.Error("Session: server listing failed", "error", err)
		return fmt.Errorf("failed to list servers: %w", err)
	}
	if len(servers) == 0 {
		slog.Warn("Session: account owns no servers")
		return nil
	}

	m.mu.Lock()
	m.server = servers[0]
	m.mu.Unlock()
	slog.Info("Session: server selected", "address", servers[0].Address())
	return nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Server returns the selected server, or nil when the session is not
// configured (login failed, not attempted yet, or the listing was empty).
func (m *Manager) Server() *panel.Server {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.server
}

// FailureReason returns the stored login error, nil unless State is Failed.
func (m *Manager) FailureReason() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reason
}
