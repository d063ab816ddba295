package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublisherEmitsEnvelopes(t *testing.T) {
	cp := NewChannelProducer()
	p := NewPublisher(cp)
	ctx := context.Background()

	p.CommandReceived(ctx, "startserver", "user-1")
	p.CommandFailed(ctx, "startserver", "user-1", errors.New("boom"))
	p.LoginSucceeded(ctx, "play.example.net")

	env := <-cp.Envelopes()
	if env.Type != EnvelopeCommandReceived || env.SenderID != "user-1" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Payload["command"] != "startserver" {
		t.Fatalf("payload missing command: %+v", env.Payload)
	}
	if env.CorrelationID == "" || env.Timestamp.IsZero() {
		t.Fatalf("envelope missing metadata: %+v", env)
	}

	env = <-cp.Envelopes()
	if env.Type != EnvelopeCommandFailed || env.Payload["error"] != "boom" {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	env = <-cp.Envelopes()
	if env.Type != EnvelopeLoginSucceeded || env.Payload["address"] != "play.example.net" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestDisabledPublisherDropsEverything(t *testing.T) {
	p := Disabled()
	ctx := context.Background()

	// Must not panic without a producer.
	p.CommandReceived(ctx, "status", "user-1")
	p.LoginFailed(ctx, errors.New("down"))
	if err := p.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}
