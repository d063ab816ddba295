package panel

import (
	"context"
	"fmt"
)

// Server is a handle to one server on the panel. All methods hit the API;
// nothing is cached between calls.
type Server struct {
	client  *Client
	id      string
	address string
}

// ID returns the panel's identifier for the server.
func (s *Server) ID() string { return s.id }

// Address returns the server's public address as listed by the panel.
func (s *Server) Address() string { return s.address }

// Fetch retrieves a fresh status snapshot.
func (s *Server) Fetch(ctx context.Context) (*Status, error) {
	var info serverInfo
	if err := s.client.get(ctx, "/servers/"+s.id, &info); err != nil {
		return nil, fmt.Errorf("failed to fetch server %s: %w", s.id, err)
	}
	if info.Address != "" {
		s.address = info.Address
	}
	return &Status{
		State:      ParseState(info.Status),
		Raw:        info.Status,
		Players:    info.Players,
		MaxPlayers: info.MaxPlayers,
		Address:    s.address,
	}, nil
}

// Start asks the panel to boot the server.
func (s *Server) Start(ctx context.Context) error {
	if err := s.client.post(ctx, "/servers/"+s.id+"/start"); err != nil {
		return fmt.Errorf("failed to start server %s: %w", s.id, err)
	}
	return nil
}

// Stop asks the panel to shut the server down.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.client.post(ctx, "/servers/"+s.id+"/stop"); err != nil {
		return fmt.Errorf("failed to stop server %s: %w", s.id, err)
	}
	return nil
}

// Confirm acknowledges a queued start so the panel promotes it out of the
// waiting queue.
func (s *Server) Confirm(ctx context.Context) error {
	if err := s.client.post(ctx, "/servers/"+s.id+"/confirm"); err != nil {
		return fmt.Errorf("failed to confirm start for server %s: %w", s.id, err)
	}
	return nil
}
