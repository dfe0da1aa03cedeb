package app

import (
	"testing"

	"health-checkin-service/internal/domain"
)

func TestRegistryDeliversToSubscriber(t *testing.T) {
	registry := NewRegistry()
	defer registry.Close()

	ch, cancel := registry.Subscribe("u1")
	defer cancel()

	registry.Publish("u1", domain.ScoreResult{Composite: 80})
	result := <-ch
	if result.Composite != 80 {
		t.Fatalf("expected composite 80, got %+v", result)
	}
}

func TestRegistryIsolatesUsers(t *testing.T) {
	registry := NewRegistry()
	defer registry.Close()

	ch, cancel := registry.Subscribe("u1")
	defer cancel()

	registry.Publish("u2", domain.ScoreResult{Composite: 99})
	select {
	case result := <-ch:
		t.Fatalf("u1 must not receive u2's result: %+v", result)
	default:
	}
}

func TestRegistryDropsOldestForSlowConsumer(t *testing.T) {
	registry := NewRegistry()
	defer registry.Close()

	ch, cancel := registry.Subscribe("u1")
	defer cancel()

	// Overfill the buffer; Publish must never block.
	for i := 0; i < 10; i++ {
		registry.Publish("u1", domain.ScoreResult{Composite: float64(i)})
	}
	last := domain.ScoreResult{Composite: -1}
	for {
		select {
		case result := <-ch:
			last = result
			continue
		default:
		}
		break
	}
	if last.Composite != 9 {
		t.Fatalf("expected the newest result to survive, got %+v", last)
	}
}

func TestRegistryCancelThenPublishIsSafe(t *testing.T) {
	registry := NewRegistry()
	defer registry.Close()

	_, cancel := registry.Subscribe("u1")
	cancel()
	cancel() // double cancel must not panic

	registry.Publish("u1", domain.ScoreResult{Composite: 50})
}

func TestRegistryCloseTerminatesSubscriptions(t *testing.T) {
	registry := NewRegistry()
	ch, cancel := registry.Subscribe("u1")
	registry.Close()

	if _, open := <-ch; open {
		t.Fatal("expected channel closed after registry shutdown")
	}
	cancel() // after close, cancel must be a no-op
	registry.Publish("u1", domain.ScoreResult{})
}
