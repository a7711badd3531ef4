package broadcast

import (
	"testing"
	"time"

	"github.com/solflu/outbreak/pkg/mutation"
	"github.com/solflu/outbreak/pkg/simulation"
	"github.com/solflu/outbreak/pkg/statecache"
)

func TestPublishSubscribe(t *testing.T) {
	addr := "inproc://broadcast-test-basic"

	publisher, err := NewPublisher(addr, nil)
	if err != nil {
		t.Fatalf("NewPublisher failed: %v", err)
	}
	defer publisher.Close()

	subscriber, err := NewSubscriber(addr, "state")
	if err != nil {
		t.Fatalf("NewSubscriber failed: %v", err)
	}
	defer subscriber.Close()

	// Pub/sub joins are asynchronous; give the dial a moment to settle.
	time.Sleep(50 * time.Millisecond)

	if err := publisher.Publish("state", []byte("payload")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	got, err := subscriber.Next(time.Second)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("Expected payload, got %q", got)
	}
}

func TestTopicFiltering(t *testing.T) {
	addr := "inproc://broadcast-test-topics"

	publisher, err := NewPublisher(addr, nil)
	if err != nil {
		t.Fatalf("NewPublisher failed: %v", err)
	}
	defer publisher.Close()

	subscriber, err := NewSubscriber(addr, "session-a")
	if err != nil {
		t.Fatalf("NewSubscriber failed: %v", err)
	}
	defer subscriber.Close()

	time.Sleep(50 * time.Millisecond)

	if err := publisher.Publish("session-b", []byte("other")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := publisher.Publish("session-a", []byte("mine")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	got, err := subscriber.Next(time.Second)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if string(got) != "mine" {
		t.Errorf("Subscriber received a foreign topic: %q", got)
	}
}

func TestPublishWithoutSubscribersSucceeds(t *testing.T) {
	// The health probe publishes on a topic nobody subscribes to; that must
	// not be an error on a pub socket.
	addr := "inproc://broadcast-test-probe"

	publisher, err := NewPublisher(addr, nil)
	if err != nil {
		t.Fatalf("NewPublisher failed: %v", err)
	}
	defer publisher.Close()

	if err := publisher.Publish("health", []byte("ping")); err != nil {
		t.Errorf("Publish without subscribers failed: %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	addr := "inproc://broadcast-test-snapshot"

	publisher, err := NewPublisher(addr, nil)
	if err != nil {
		t.Fatalf("NewPublisher failed: %v", err)
	}
	defer publisher.Close()

	subscriber, err := NewSubscriber(addr, "state")
	if err != nil {
		t.Fatalf("NewSubscriber failed: %v", err)
	}
	defer subscriber.Close()

	time.Sleep(50 * time.Millisecond)

	snapshot := simulation.Snapshot{
		Countries: map[string]simulation.CountrySnapshot{
			"US": {Population: 1_000_000, Infected: 5000, Susceptible: 995_000},
		},
		GlobalStats:   simulation.GlobalStats{TotalPopulation: 1_000_000, TotalInfected: 5000},
		MutationState: mutation.State{Strain: 2},
	}

	payload, err := statecache.Encode(&snapshot)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if err := publisher.Publish("state", payload); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	raw, err := subscriber.Next(time.Second)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	decoded, err := statecache.Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Countries["US"].Infected != 5000 {
		t.Errorf("Round trip lost infected count: %f", decoded.Countries["US"].Infected)
	}
	if decoded.MutationState.Strain != 2 {
		t.Errorf("Round trip lost strain: %d", decoded.MutationState.Strain)
	}
}
